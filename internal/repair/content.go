package repair

import "bytes"

// TrimTrailingNewlines removes every trailing '\n'. A trailing "\r" is kept.
func TrimTrailingNewlines(content []byte) []byte {
	return bytes.TrimRight(content, "\n")
}

// AppendComment returns content with trailing newlines trimmed and comment
// added as a new last line terminated by '\n'. content is not modified.
func AppendComment(content []byte, comment string) []byte {
	trimmed := TrimTrailingNewlines(content)
	out := make([]byte, 0, len(trimmed)+len(comment)+2)
	out = append(out, trimmed...)
	out = append(out, '\n')
	out = append(out, comment...)
	return append(out, '\n')
}
