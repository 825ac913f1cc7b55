package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/blake2b"
)

var cacheBucket = []byte("outputs")

// Cache remembers which input produced an output file, so that unchanged inputs are not minified
// again. Entries map the output path to a hash of the input and the options.
type Cache struct {
	db *bolt.DB
}

// OpenCache opens or creates the cache database at filename.
func OpenCache(filename string) (*Cache, error) {
	db, err := bolt.Open(filename, 0666, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache %q: %w", filename, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open cache %q: %w", filename, err)
	}
	return &Cache{db}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key returns the cache key of an input under the given options fingerprint.
func (c *Cache) Key(input []byte, fingerprint string) []byte {
	h, _ := blake2b.New256(nil)
	h.Write(input)
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	return h.Sum(nil)
}

// Fresh returns true when dst exists and was last written from an input with the given key.
func (c *Cache) Fresh(dst string, key []byte) bool {
	if dst == "" {
		return false
	} else if _, err := os.Stat(dst); err != nil {
		return false
	}
	fresh := false
	c.db.View(func(tx *bolt.Tx) error {
		fresh = bytes.Equal(tx.Bucket(cacheBucket).Get([]byte(dst)), key)
		return nil
	})
	return fresh
}

// Put records that dst was written from an input with the given key.
func (c *Cache) Put(dst string, key []byte) error {
	if dst == "" {
		return nil
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put([]byte(dst), key)
	})
}
