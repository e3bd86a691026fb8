// Package blocks converts markdown text into the block sequence consumed by
// the workspace API's append-children operation. The markdown is rendered to
// HTML first, then the tag tree is walked in document order and each
// recognized tag is mapped to a block through a static dispatch table.
package blocks

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/jomei/notionapi"
	"github.com/yuin/goldmark"
)

const defaultColor = "default"

// tagToBlock maps HTML tag names to block constructors. List items are not
// listed here: their block type depends on the parent tag.
var tagToBlock = map[string]func(*goquery.Selection) notionapi.Block{
	"p":   newParagraphBlock,
	"h1":  func(sel *goquery.Selection) notionapi.Block { return newHeadingBlock(sel, 1) },
	"h2":  func(sel *goquery.Selection) notionapi.Block { return newHeadingBlock(sel, 2) },
	"h3":  func(sel *goquery.Selection) notionapi.Block { return newHeadingBlock(sel, 3) },
	"img": newImageBlock,
}

// FromMarkdown converts markdown to a flat, ordered block sequence. The
// sequence always starts with a divider separating the appended content from
// whatever the page already holds. Tags without a constructor are skipped.
// Nested children arrays stay empty; nesting is flattened into document order.
func FromMarkdown(markdown string) (notionapi.Blocks, error) {
	var html bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &html); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(&html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered HTML: %w", err)
	}

	result := notionapi.Blocks{newDividerBlock()}
	doc.Find("p, h1, h2, h3, li, img").Each(func(_ int, sel *goquery.Selection) {
		if block := blockForTag(sel); block != nil {
			result = append(result, block)
		}
	})
	return result, nil
}

func blockForTag(sel *goquery.Selection) notionapi.Block {
	name := goquery.NodeName(sel)
	if name == "li" {
		// Membership in an ordered vs. unordered list is decided by the
		// immediate parent tag.
		if goquery.NodeName(sel.Parent()) == "ol" {
			return newNumberedListItemBlock(sel)
		}
		return newBulletedListItemBlock(sel)
	}
	if create, ok := tagToBlock[name]; ok {
		return create(sel)
	}
	return nil
}

func newRichText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Text: &notionapi.Text{
				Content: content,
			},
		},
	}
}

func newDividerBlock() notionapi.Block {
	return &notionapi.DividerBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: "block",
			Type:   notionapi.BlockTypeDivider,
		},
		Divider: notionapi.Divider{},
	}
}

func newParagraphBlock(sel *goquery.Selection) notionapi.Block {
	return &notionapi.ParagraphBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: "block",
			Type:   notionapi.BlockTypeParagraph,
		},
		Paragraph: notionapi.Paragraph{
			RichText: newRichText(sel.Text()),
			Color:    defaultColor,
		},
	}
}

func newHeadingBlock(sel *goquery.Selection, level int) notionapi.Block {
	heading := notionapi.Heading{
		RichText:     newRichText(sel.Text()),
		Color:        defaultColor,
		IsToggleable: false,
	}

	switch level {
	case 1:
		return &notionapi.Heading1Block{
			BasicBlock: notionapi.BasicBlock{
				Object: "block",
				Type:   notionapi.BlockTypeHeading1,
			},
			Heading1: heading,
		}
	case 2:
		return &notionapi.Heading2Block{
			BasicBlock: notionapi.BasicBlock{
				Object: "block",
				Type:   notionapi.BlockTypeHeading2,
			},
			Heading2: heading,
		}
	default:
		return &notionapi.Heading3Block{
			BasicBlock: notionapi.BasicBlock{
				Object: "block",
				Type:   notionapi.BlockTypeHeading3,
			},
			Heading3: heading,
		}
	}
}

func newBulletedListItemBlock(sel *goquery.Selection) notionapi.Block {
	return &notionapi.BulletedListItemBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: "block",
			Type:   notionapi.BlockTypeBulletedListItem,
		},
		BulletedListItem: notionapi.ListItem{
			RichText: newRichText(sel.Text()),
			Color:    defaultColor,
		},
	}
}

func newNumberedListItemBlock(sel *goquery.Selection) notionapi.Block {
	return &notionapi.NumberedListItemBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: "block",
			Type:   notionapi.BlockTypeNumberedListItem,
		},
		NumberedListItem: notionapi.ListItem{
			RichText: newRichText(sel.Text()),
			Color:    defaultColor,
		},
	}
}

func newImageBlock(sel *goquery.Selection) notionapi.Block {
	return &notionapi.ImageBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: "block",
			Type:   notionapi.BlockTypeImage,
		},
		Image: notionapi.Image{
			Type: notionapi.FileTypeExternal,
			External: &notionapi.FileObject{
				URL: sel.AttrOr("src", ""),
			},
		},
	}
}
