package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"receiptbatch/internal/scanning"
)

const runsBucketName = "runs"

// Ledger keeps a durable history of accepted receipts, one nested bucket
// per run keyed by the run timestamp.
type Ledger struct {
	db *bbolt.DB
}

// Open opens (or creates) the ledger database at path.
func Open(path string) (*Ledger, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(runsBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Append stores one accepted record under the given run key, preserving
// insertion order within the run.
func (l *Ledger) Append(run string, rec scanning.ReceiptData) error {
	return l.db.Update(func(tx *bbolt.Tx) error {
		runs := tx.Bucket([]byte(runsBucketName))
		bucket, err := runs.CreateBucketIfNotExists([]byte(run))
		if err != nil {
			return fmt.Errorf("creating run bucket: %w", err)
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("allocating sequence: %w", err)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling record: %w", err)
		}
		return bucket.Put([]byte(fmt.Sprintf("%08d", seq)), data)
	})
}

// Runs returns the recorded run keys in chronological order. Run keys are
// second-resolution timestamps, so bbolt's key order is already
// chronological.
func (l *Ledger) Runs() ([]string, error) {
	runs := make([]string, 0)
	err := l.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(runsBucketName))
		return bucket.ForEachBucket(func(k []byte) error {
			runs = append(runs, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// Records returns the records of one run in insertion order.
func (l *Ledger) Records(run string) ([]scanning.ReceiptData, error) {
	records := make([]scanning.ReceiptData, 0)
	err := l.db.View(func(tx *bbolt.Tx) error {
		runs := tx.Bucket([]byte(runsBucketName))
		bucket := runs.Bucket([]byte(run))
		if bucket == nil {
			return fmt.Errorf("run not found: %s", run)
		}
		return bucket.ForEach(func(k, v []byte) error {
			var rec scanning.ReceiptData
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshaling record: %w", err)
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
