package narrate

import (
	"io"
	"net/http"
)

// Relay forwards fragments to w in arrival order, flushing after each write
// so the client sees tokens as they are generated. It returns the number of
// bytes written and the first error encountered, either from the stream or
// from the writer. Bytes already written are never retracted; the caller
// decides how to finish the response based on whether anything was sent.
func Relay(w io.Writer, fragments <-chan Fragment) (int, error) {
	flusher, _ := w.(http.Flusher)
	sent := 0

	for fragment := range fragments {
		if fragment.Err != nil {
			return sent, fragment.Err
		}

		n, err := io.WriteString(w, fragment.Text)
		sent += n
		if err != nil {
			return sent, err
		}

		if flusher != nil {
			flusher.Flush()
		}
	}

	return sent, nil
}
