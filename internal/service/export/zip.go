package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

// Zip serialises a tree with deflate compression. Folders are written as
// explicit directory entries so empty topics survive extraction.
func Zip(root *Node, modified time.Time) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	err := root.Walk(func(p string, n *Node) error {
		header := &zip.FileHeader{
			Name:     p,
			Method:   zip.Deflate,
			Modified: modified,
		}
		if n.Dir {
			header.Name += "/"
			header.Method = zip.Store
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("add %s: %w", p, err)
		}
		if n.Dir {
			return nil
		}
		if _, err := w.Write(n.Data); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
		return nil
	})
	if err != nil {
		zw.Close()
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish archive: %w", err)
	}
	return buf.Bytes(), nil
}
