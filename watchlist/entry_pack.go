package watchlist

import (
	"errors"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// WriteEntriesMsgpack writes entries in MessagePack format as an array stream.
func WriteEntriesMsgpack(w io.Writer, entries []Entry) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.EncodeArrayLen(len(entries)); err != nil {
		return err
	}
	for i := range entries {
		entries[i].Clean()
		if err := enc.Encode(&entries[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadEntriesMsgpack reads entries encoded as an array.
func ReadEntriesMsgpack(r io.Reader, fn func(Entry) error) error {
	dec := msgpack.NewDecoder(r)
	n, err := dec.DecodeArrayLen()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	for i := 0; i < n; i++ {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return err
		}
		e.Clean()
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// WriteEntriesYAML writes entries as a single YAML sequence.
func WriteEntriesYAML(w io.Writer, entries []Entry) error {
	for i := range entries {
		entries[i].Clean()
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return err
	}
	return enc.Close()
}

// ReadEntriesYAML reads a YAML sequence of entries.
func ReadEntriesYAML(r io.Reader, fn func(Entry) error) error {
	var entries []Entry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		e.Clean()
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}
