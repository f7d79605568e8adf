package watchlist

import (
	"bufio"
	"encoding/json"
	"io"
)

// ftmEntity is the FollowTheMoney entity shape emitted by sanctions datasets.
type ftmEntity struct {
	ID         string              `json:"id"`
	Schema     string              `json:"schema"`
	Properties map[string][]string `json:"properties"`
}

// PersonSchemata are the FtM schemata imported as persons.
var PersonSchemata = map[string]bool{"Person": true}

// ReadFtMNames reads FtM entities as JSON lines and calls fn once for every
// name and alias of a person entity. Other schemata are skipped.
func ReadFtMNames(r io.Reader, fn func(entityID, name string) error) error {
	dec := json.NewDecoder(bufio.NewReader(r))
	for {
		var e ftmEntity
		if err := dec.Decode(&e); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !PersonSchemata[e.Schema] {
			continue
		}
		for _, prop := range []string{"name", "alias"} {
			for _, v := range e.Properties[prop] {
				if err := fn(e.ID, v); err != nil {
					return err
				}
			}
		}
	}
}
