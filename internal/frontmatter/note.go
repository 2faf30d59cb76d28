package frontmatter

// Note is a parsed note: its frontmatter, body and resolved card fields.
type Note struct {
	Path   string
	Block  Block
	Body   string
	Fields Fields

	// Err is ErrInvalidFrontmatter (wrapped) when the block could not be
	// read. Fields then hold defaults only.
	Err error
}

// Parse splits data and resolves its card fields. Only the frontmatter
// tag list feeds Fields.Tags; #tags in the body do not select a note.
func Parse(docPath string, data []byte, keys Keys) Note {
	block, body, err := Split(data)
	return Note{
		Path:   docPath,
		Block:  block,
		Body:   body,
		Fields: Resolve(block, docPath, keys),
		Err:    err,
	}
}
