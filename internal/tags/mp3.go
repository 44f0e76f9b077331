package tags

import (
	"errors"
	"fmt"

	"github.com/bogem/id3v2/v2"
)

// writeMP3 sets TXXX frames for values, keeping every other frame.
func writeMP3(path string, values map[string]string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if errors.Is(err, id3v2.ErrUnsupportedVersion) {
		return fmt.Errorf("ID3v2.2 tags are not supported")
	}
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	var keep []id3v2.UserDefinedTextFrame
	for _, frame := range tag.GetFrames("TXXX") {
		txxx, ok := frame.(id3v2.UserDefinedTextFrame)
		if !ok {
			continue
		}
		if _, replaced := values[txxx.Description]; !replaced {
			keep = append(keep, txxx)
		}
	}

	tag.DeleteFrames("TXXX")
	for _, txxx := range keep {
		tag.AddUserDefinedTextFrame(txxx)
	}
	for desc, value := range values {
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: desc,
			Value:       value,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func readMP3(path, key string) (string, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer tag.Close()

	for _, frame := range tag.GetFrames("TXXX") {
		if txxx, ok := frame.(id3v2.UserDefinedTextFrame); ok && txxx.Description == key {
			return txxx.Value, nil
		}
	}
	return "", nil
}
