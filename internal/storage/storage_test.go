package storage_test

import (
	"testing"

	"github.com/OCAP2/pinmap/internal/storage"
	"github.com/stretchr/testify/assert"
)

func TestDefaultName(t *testing.T) {
	assert.Equal(t, "Pin 1", storage.DefaultName(1))
	assert.Equal(t, "Pin 42", storage.DefaultName(42))
}
