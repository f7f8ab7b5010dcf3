// Package parser decomposes the Atom feed documents of the procurement
// platform into flattened contract folder records, in a single streaming
// pass per document.
package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ParseError reports a document that could not be decomposed. The
// surrounding period keeps going; the file is recorded as skipped.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type entryField int

const (
	entryNone entryField = iota
	entryID
	entryTitle
	entrySummary
	entryUpdated
)

type entryBuilder struct {
	id, title, summary, updated, link *string
	folder                            *ContractFolderRecord

	current entryField
	text    strings.Builder
}

func (b *entryBuilder) reset() {
	*b = entryBuilder{}
}

func (b *entryBuilder) closeField() {
	if b.current == entryNone {
		return
	}
	trimmed := strings.TrimSpace(b.text.String())
	if trimmed != "" {
		v := trimmed
		switch b.current {
		case entryID:
			b.id = &v
		case entryTitle:
			b.title = &v
		case entrySummary:
			b.summary = &v
		case entryUpdated:
			b.updated = &v
		}
	}
	b.current = entryNone
	b.text.Reset()
}

// build emits a record only when the entry carried an id or a title;
// anything else is noise in the feed.
func (b *entryBuilder) build() (ContractFolderRecord, bool) {
	if b.id == nil && b.title == nil {
		return ContractFolderRecord{}, false
	}
	var rec ContractFolderRecord
	if b.folder != nil {
		rec = *b.folder
	}
	rec.EntryID = b.id
	rec.EntryTitle = b.title
	rec.EntrySummary = b.summary
	rec.EntryUpdated = b.updated
	rec.EntryLink = b.link
	return rec, true
}

// ParseDocument streams one Atom document and returns a record per
// qualifying entry. When keepRaw is set, each record carries the exact
// source bytes of its ContractFolderStatus subtree.
func ParseDocument(data []byte, keepRaw bool) ([]ContractFolderRecord, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		records     []ContractFolderRecord
		builder     entryBuilder
		insideEntry bool
		scope       *folderScope
		cfsDepth    int
		rawStart    int64
	)

	for {
		offsetBefore := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xml decode: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if scope != nil {
				cfsDepth++
				scope.handleStart(el)
				continue
			}
			if insideEntry && el.Name.Local == "ContractFolderStatus" {
				scope = newFolderScope()
				cfsDepth = 1
				rawStart = offsetBefore
				continue
			}
			switch el.Name.Local {
			case "entry":
				insideEntry = true
				builder.reset()
			case "id":
				if insideEntry {
					builder.current = entryID
					builder.text.Reset()
				}
			case "title":
				if insideEntry {
					builder.current = entryTitle
					builder.text.Reset()
				}
			case "summary":
				if insideEntry {
					builder.current = entrySummary
					builder.text.Reset()
				}
			case "updated":
				if insideEntry {
					builder.current = entryUpdated
					builder.text.Reset()
				}
			case "link":
				if insideEntry {
					if href, ok := attrValue(el, "href"); ok {
						builder.link = &href
					}
				}
			}

		case xml.EndElement:
			if scope != nil {
				cfsDepth--
				if cfsDepth == 0 {
					rec := scope.result()
					if keepRaw {
						raw := string(data[rawStart:dec.InputOffset()])
						rec.CFSRawXML = &raw
					}
					builder.folder = &rec
					scope = nil
					continue
				}
				scope.handleEnd(el)
				continue
			}
			switch el.Name.Local {
			case "entry":
				if insideEntry {
					if rec, ok := builder.build(); ok {
						records = append(records, rec)
					}
					builder.reset()
					insideEntry = false
				}
			case "id", "title", "summary", "updated":
				builder.closeField()
			}

		case xml.CharData:
			if scope != nil {
				scope.handleText(strings.TrimSpace(string(el)))
				continue
			}
			if insideEntry && builder.current != entryNone {
				builder.text.Write(el)
			}
		}
	}

	return records, nil
}
