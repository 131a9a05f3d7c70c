package authgate

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kesparza-dev/authgate/internal"
)

const (
	recoveryKeyPrefix      = "ag:rec"
	recoveryRecordVersion1 = 1
)

var (
	errRecoveryNotFound         = errors.New("recovery record not found")
	errRecoverySecretMismatch   = errors.New("recovery secret mismatch")
	errRecoveryAttemptsExceeded = errors.New("recovery attempts exceeded")
	errRecoveryRedisUnavailable = errors.New("recovery redis unavailable")
)

// recoveryTokenRecord is the stored half of a recovery token. Only the hash
// of the secret is kept, so reading the record is not enough to redeem it.
type recoveryTokenRecord struct {
	Email      string
	SecretHash [32]byte
	ExpiresAt  int64
	Attempts   uint16
}

type recoveryTokenStore struct {
	redis  redis.UniversalClient
	prefix string
}

func newRecoveryTokenStore(redisClient redis.UniversalClient) *recoveryTokenStore {
	return &recoveryTokenStore{
		redis:  redisClient,
		prefix: recoveryKeyPrefix,
	}
}

func (s *recoveryTokenStore) key(id internal.RecoveryID) string {
	return s.prefix + ":" + id.String()
}

// Save stores the record under the id with the given TTL.
func (s *recoveryTokenStore) Save(
	ctx context.Context,
	id internal.RecoveryID,
	record *recoveryTokenRecord,
	ttl time.Duration,
) error {
	encoded, err := encodeRecoveryTokenRecord(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(id), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRecoveryRedisUnavailable, err)
	}

	return nil
}

// Consume redeems the record atomically. On a hash match the record is
// deleted and returned, so a token redeems at most once. A mismatch burns an
// attempt; exhausting the budget deletes the record.
func (s *recoveryTokenStore) Consume(
	ctx context.Context,
	id internal.RecoveryID,
	providedHash [32]byte,
	maxAttempts int,
) (*recoveryTokenRecord, error) {
	const maxRetries = 4
	key := s.key(id)

	for i := 0; i < maxRetries; i++ {
		var matched *recoveryTokenRecord

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeRecoveryTokenRecord(data)
			if err != nil {
				return err
			}

			now := time.Now()
			if now.Unix() > record.ExpiresAt {
				if err := deleteInTx(ctx, tx, key); err != nil {
					return err
				}
				return errRecoveryNotFound
			}

			if subtle.ConstantTimeCompare(record.SecretHash[:], providedHash[:]) != 1 {
				record.Attempts++
				if int(record.Attempts) >= maxAttempts {
					if err := deleteInTx(ctx, tx, key); err != nil {
						return err
					}
					return errRecoveryAttemptsExceeded
				}

				ttl := time.Until(time.Unix(record.ExpiresAt, 0))
				if ttl <= 0 {
					if err := deleteInTx(ctx, tx, key); err != nil {
						return err
					}
					return errRecoveryNotFound
				}

				updated, err := encodeRecoveryTokenRecord(record)
				if err != nil {
					return err
				}

				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Set(ctx, key, updated, ttl)
					return nil
				})
				if err != nil {
					return err
				}
				return errRecoverySecretMismatch
			}

			if err := deleteInTx(ctx, tx, key); err != nil {
				return err
			}

			matched = record
			return nil
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return nil, errRecoveryNotFound
			case errors.Is(err, errRecoveryNotFound),
				errors.Is(err, errRecoverySecretMismatch),
				errors.Is(err, errRecoveryAttemptsExceeded):
				return nil, err
			default:
				return nil, fmt.Errorf("%w: %v", errRecoveryRedisUnavailable, err)
			}
		}

		return matched, nil
	}

	return nil, errRecoveryNotFound
}

func deleteInTx(ctx context.Context, tx *redis.Tx, key string) error {
	_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		return nil
	})
	return err
}

func encodeRecoveryTokenRecord(record *recoveryTokenRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recoveryRecordVersion1)

	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	if len(record.Email) > 65535 {
		return nil, errors.New("recovery record email too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.Email))); err != nil {
		return nil, err
	}
	buf.WriteString(record.Email)
	buf.Write(record.SecretHash[:])

	return buf.Bytes(), nil
}

func decodeRecoveryTokenRecord(data []byte) (*recoveryTokenRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recoveryRecordVersion1 {
		return nil, errors.New("invalid recovery record version")
	}

	record := &recoveryTokenRecord{}

	if err := binary.Read(reader, binary.BigEndian, &record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	var emailLen uint16
	if err := binary.Read(reader, binary.BigEndian, &emailLen); err != nil {
		return nil, err
	}

	email := make([]byte, emailLen)
	if _, err := io.ReadFull(reader, email); err != nil {
		return nil, err
	}
	record.Email = string(email)

	if _, err := io.ReadFull(reader, record.SecretHash[:]); err != nil {
		return nil, err
	}

	return record, nil
}
