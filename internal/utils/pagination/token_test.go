package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	// Standard date/time values
	transactionDate := time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2023, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(transactionDate, createdAt)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedDate, decodedCreatedAt, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, transactionDate, decodedDate, "Transaction date should match after decode")
	assert.Equal(t, createdAt, decodedCreatedAt, "Created at time should match after decode")

	// Zero time values
	zeroTime := time.Time{}
	zeroToken := EncodeToken(zeroTime, zeroTime)
	decodedZeroDate, decodedZeroTime, err := DecodeToken(zeroToken)
	assert.NoError(t, err, "Decoding zero time should not return an error")
	assert.Equal(t, zeroTime, decodedZeroDate)
	assert.Equal(t, zeroTime, decodedZeroTime)

	// Non-UTC offsets survive the round trip
	tunis := time.FixedZone("CET", 3600)
	local := time.Date(2025, 3, 1, 23, 59, 0, 0, tunis)
	decodedLocal, _, err := DecodeToken(EncodeToken(local, local))
	assert.NoError(t, err)
	assert.True(t, local.Equal(decodedLocal))
}

func TestDecodeTokenError(t *testing.T) {
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	noSeparator := base64.URLEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z"))
	_, _, err = DecodeToken(noSeparator)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	badDate := base64.URLEncoding.EncodeToString([]byte("notadate|2023-05-15T14:30:45.123456789Z"))
	_, _, err = DecodeToken(badDate)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "transaction date parse")

	badCreated := base64.URLEncoding.EncodeToString([]byte("2023-05-15T14:30:45Z|later"))
	_, _, err = DecodeToken(badCreated)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "created_at parse")
}

func TestCursorRoundTrip(t *testing.T) {
	cursor, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, cursor)

	txn := domain.Transaction{
		TransactionDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:       time.Date(2025, 2, 1, 9, 12, 0, 42, time.UTC),
	}

	cursor, err = DecodeCursor(EncodeCursor(txn))
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.True(t, txn.TransactionDate.Equal(cursor.TransactionDate))
	assert.True(t, txn.CreatedAt.Equal(cursor.CreatedAt))
}
