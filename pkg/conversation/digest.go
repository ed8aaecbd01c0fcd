package conversation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Entry is an utterance linked to the entry before it. Hash covers the
// utterance and the previous hash, so the head hash identifies the whole
// transcript up to that point.
type Entry struct {
	Hash       string    `json:"hash"`
	ParentHash *string   `json:"parent_hash,omitempty"`
	Utterance  Utterance `json:"utterance"`
}

type digestInput struct {
	Utterance Utterance `json:"utterance"`
	Parent    string    `json:"parent,omitempty"`
}

func newEntry(u Utterance, parent *Entry) Entry {
	e := Entry{Utterance: u}
	if parent != nil {
		h := parent.Hash
		e.ParentHash = &h
	}
	e.Hash = e.computeHash()
	return e
}

func (e Entry) computeHash() string {
	in := digestInput{Utterance: e.Utterance}
	if e.ParentHash != nil {
		in.Parent = *e.ParentHash
	}

	data, err := json.Marshal(in)
	if err != nil {
		panic("failed to marshal digest input: " + err.Error())
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
