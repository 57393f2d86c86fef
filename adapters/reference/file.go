package reference

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"go.uber.org/zap"

	"github.com/satriahrh/refchat/utils/log"
)

// Text is the reference blob embedded into every prompt. It is read once at
// startup and never mutated.
type Text struct {
	Content string
	Digest  string
}

// Load reads path. A missing or unreadable file is logged and yields an empty
// Text so the process can still start.
func Load(path string) Text {
	data, err := os.ReadFile(path)
	if err != nil {
		log.With(zap.String("path", path)).Error("reading reference file", zap.Error(err))
		return Text{Digest: digest(nil)}
	}

	text := Text{Content: string(data), Digest: digest(data)}
	log.With(
		zap.String("path", path),
		zap.Int("bytes", len(data)),
		zap.String("sha256", text.Digest),
	).Info("reference file loaded")
	return text
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
