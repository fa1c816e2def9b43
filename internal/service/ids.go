package service

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

func newID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// documentID derives the id for a new document. The timestamp keeps repeated
// uploads of the same file distinct.
func documentID(filename string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%d", filename, time.Now().UnixNano())))
	return "doc_" + hex.EncodeToString(sum[:])[:16]
}
