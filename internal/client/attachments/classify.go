package attachments

import (
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// Classify maps a MIME type to an attachment kind by prefix.
// It never returns models.KindFolder.
func Classify(mimeType string) models.Kind {
	mt := strings.ToLower(mimeType)
	switch {
	case strings.HasPrefix(mt, "image/"):
		return models.KindImage
	case strings.HasPrefix(mt, "video/"):
		return models.KindVideo
	default:
		return models.KindFile
	}
}

// HumanSize formats a byte count with 1024-based units and up to two
// decimals: 0 -> "0 Bytes", 1536 -> "1.5 KB". Sizes past the GB range stay
// in GB.
func HumanSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	// integer form of floor(log1024(bytes)), clamped to the unit table
	unit := 0
	for div := int64(1024); unit < len(sizeUnits)-1 && bytes >= div; div *= 1024 {
		unit++
	}

	value := float64(bytes)
	for i := 0; i < unit; i++ {
		value /= 1024
	}

	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(value, 'f', 2, 64), 64)
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[unit]
}
