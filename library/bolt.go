package library

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
)

var booksBucket = []byte("books")

// BoltCodec keeps the catalog in a bolt bucket. Keys are the big-endian
// store position, so a cursor walk returns books in store order.
type BoltCodec struct {
	client *bolt.DB
}

// NewBoltCodec opens the database and makes sure the bucket exists.
func NewBoltCodec(path string, timeout time.Duration) (*BoltCodec, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("%w: open bolt: %v", ErrIOUnavailable, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists(booksBucket); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", booksBucket, errB)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrIOUnavailable, err)
	}
	return &BoltCodec{client: db}, nil
}

// Close shuts down the bolt database.
func (bc *BoltCodec) Close() error {
	return bc.client.Close()
}

func positionKey(i int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(i))
	return k
}

// Save recreates the bucket with every book in order.
func (bc *BoltCodec) Save(books []Book) error {
	err := bc.client.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(booksBucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		bucket, err := tx.CreateBucket(booksBucket)
		if err != nil {
			return err
		}
		for i, b := range books {
			bookBytes, err := json.Marshal(b)
			if err != nil {
				return err
			}
			if err := bucket.Put(positionKey(i), bookBytes); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIOUnavailable, err)
	}
	return nil
}

// Load walks the bucket in key order.
func (bc *BoltCodec) Load() ([]Book, error) {
	tx, err := bc.client.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOUnavailable, err)
	}
	defer tx.Rollback()

	bucket := tx.Bucket(booksBucket)
	if bucket == nil {
		return nil, nil
	}
	var books []Book
	c := bucket.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var b Book
		if err := json.Unmarshal(v, &b); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		books = append(books, b)
	}
	return books, nil
}
