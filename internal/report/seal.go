package report

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// SealedHeader is the first line of a sealed report. The rest of the file is
// an ASCII-armored age payload encrypted to a scrypt passphrase, so
// `tail -n +2 report.json.age | age -d` also opens it.
const SealedHeader = "# hybridllm sealed report v1"

const ageArmorHeader = "-----BEGIN AGE ENCRYPTED FILE-----"

var (
	ErrNoPassphrase    = errors.New("sealed reports need a passphrase")
	ErrWrongPassphrase = errors.New("passphrase does not open this report")
)

// Seal encrypts a marshaled report for passphrase and prefixes it with
// SealedHeader.
func Seal(data []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrNoPassphrase
	}
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("seal report: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(SealedHeader + "\n")
	if err := sealTo(&buf, data, recipient); err != nil {
		return nil, fmt.Errorf("seal report: %w", err)
	}
	return buf.Bytes(), nil
}

func sealTo(dst io.Writer, data []byte, recipient age.Recipient) error {
	aw := armor.NewWriter(dst)
	w, err := age.Encrypt(aw, recipient)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return aw.Close()
}

// Open decrypts a sealed report. Payloads without SealedHeader, as written
// by the age CLI with -a, are accepted too.
func Open(data []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrNoPassphrase
	}
	if !IsSealed(data) {
		return nil, fmt.Errorf("open report: not a sealed report")
	}
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}

	r, err := age.Decrypt(armor.NewReader(bytes.NewReader(payload(data))), identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, ErrWrongPassphrase
		}
		return nil, fmt.Errorf("open report: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	return out, nil
}

// payload strips leading blank space and SealedHeader, leaving the armor.
func payload(data []byte) []byte {
	data = bytes.TrimLeft(data, " \t\r\n")
	if rest, ok := bytes.CutPrefix(data, []byte(SealedHeader)); ok {
		return bytes.TrimLeft(rest, " \t\r\n")
	}
	return data
}

// IsSealed reports whether data is a sealed report or a bare armored age
// payload.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(payload(data), []byte(ageArmorHeader))
}

// WriteFile writes data to path, sealing it first when passphrase is set.
func WriteFile(path string, data []byte, passphrase string) error {
	if passphrase != "" {
		sealed, err := Seal(data, passphrase)
		if err != nil {
			return err
		}
		data = sealed
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// ReadFile reads a report file, opening it when it is sealed.
func ReadFile(path, passphrase string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	if !IsSealed(data) {
		return data, nil
	}
	if passphrase == "" {
		return nil, fmt.Errorf("report %s: %w", path, ErrNoPassphrase)
	}
	return Open(data, passphrase)
}
