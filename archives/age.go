package archives

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"filippo.io/age"
	"filippo.io/age/armor"
)

var (
	ageMagic   = []byte("age-encryption.org/v1")
	armorMagic = []byte(armor.Header)
)

// Whether the reader starts like an age-encrypted file, binary or armored
func isAgeEncrypted(br *bufio.Reader) bool {
	hdr, _ := br.Peek(len(armorMagic))
	return bytes.HasPrefix(hdr, ageMagic) || bytes.HasPrefix(hdr, armorMagic)
}

// Decrypt an age-encrypted file into a temporary file. The caller must close
// and remove the returned file.
func decryptToTemp(path string, identities []age.Identity) (*os.File, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	br := bufio.NewReader(src)
	var r io.Reader = br
	if hdr, _ := br.Peek(len(armorMagic)); bytes.Equal(hdr, armorMagic) {
		r = armor.NewReader(br)
	}

	plain, err := age.Decrypt(r, identities...)
	if err != nil {
		return nil, fmt.Errorf("cannot decrypt %s: %w", path, err)
	}

	tmp, err := os.CreateTemp("", "worldback-*.zip")
	if err != nil {
		return nil, err
	}

	_, err = io.Copy(tmp, plain)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("cannot decrypt %s: %w", path, err)
	}

	return tmp, nil
}
