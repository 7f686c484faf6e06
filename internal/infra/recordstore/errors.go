// Package recordstore implements record.Store over MongoDB, PostgreSQL and memory.
package recordstore

import (
	"github.com/google/uuid"

	apperrors "github.com/yanqian/shadowcast/pkg/errors"
)

var errNotConnected = apperrors.Wrap(apperrors.CodeStoreUnavailable, "record store is not connected", nil)

func parseUUID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperrors.Wrap(apperrors.CodeInvalidInput, "malformed record id", err)
	}
	return parsed, nil
}

func validateUUID(id string) error {
	_, err := parseUUID(id)
	return err
}
