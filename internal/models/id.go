package models

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// IDAlphabet and IDLength describe the opaque primary keys used for every table.
const (
	IDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	IDLength   = 20
)

// NewID generates a new opaque primary key.
func NewID() (string, error) {
	id, err := gonanoid.Generate(IDAlphabet, IDLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id, nil
}

// ensureID fills *id when the caller did not pick one.
func ensureID(id *string) error {
	if *id != "" {
		return nil
	}
	generated, err := NewID()
	if err != nil {
		return err
	}
	*id = generated
	return nil
}
