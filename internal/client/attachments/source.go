package attachments

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

var ErrIsDirectory = errors.New("directories cannot be attached")

// SourceFile describes a file on the local file system chosen for sending.
type SourceFile struct {
	Name     string
	Path     string
	Size     int64
	MimeType string
}

// SourceFileFromPath stats path and derives its MIME type from the
// extension, sniffing the first bytes when the extension is unknown.
func SourceFileFromPath(path string) (SourceFile, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return SourceFile{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return SourceFile{}, fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}

	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		mt, err = sniff(path)
		if err != nil {
			return SourceFile{}, err
		}
	}
	if base, _, err := mime.ParseMediaType(mt); err == nil {
		mt = base
	}

	return SourceFile{
		Name:     fi.Name(),
		Path:     path,
		Size:     fi.Size(),
		MimeType: mt,
	}, nil
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return http.DetectContentType(buf[:n]), nil
}
