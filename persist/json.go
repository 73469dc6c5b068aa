package persist

import (
	"encoding/json"
	"io/ioutil"
	"os"
)

// SaveJSON writes a JSON-encoded object to disk. The meta argument is not
// written to the file. The file is written to a temporary location and
// renamed into place so that a concurrent reader never observes a partially
// written file.
func SaveJSON(meta Metadata, object interface{}, filename string) error {
	data, err := json.MarshalIndent(object, "", "\t")
	if err != nil {
		return err
	}

	tmpFilename := filename + "_tmp"
	err = ioutil.WriteFile(tmpFilename, data, 0600)
	if err != nil {
		return err
	}
	return os.Rename(tmpFilename, filename)
}

// LoadJSON reads a JSON-encoded object from disk into object. The meta
// argument is not checked against the file's contents.
func LoadJSON(meta Metadata, object interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(object)
}

// RemoveFile removes a persisted file, returning nil if the file does not
// exist.
func RemoveFile(filename string) error {
	err := os.Remove(filename)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
