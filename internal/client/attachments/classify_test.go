package attachments

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		mime string
		want models.Kind
	}{
		{"image/png", models.KindImage},
		{"image/svg+xml", models.KindImage},
		{"IMAGE/JPEG", models.KindImage},
		{"video/mp4", models.KindVideo},
		{"application/pdf", models.KindFile},
		{"text/plain", models.KindFile},
		{"", models.KindFile},
		{"imagex/png", models.KindFile},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.mime))
		})
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 Bytes"},
		{-5, "0 Bytes"},
		{1, "1 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{2_516_582, "2.4 MB"},
		{1 << 20, "1 MB"},
		{1 << 30, "1 GB"},
		{5 << 40, "5120 GB"},
		{1_888_000, "1.8 MB"},
		{1100, "1.07 KB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HumanSize(tt.in), "HumanSize(%d)", tt.in)
	}
}
