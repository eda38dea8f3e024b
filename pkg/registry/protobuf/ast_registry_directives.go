package protobuf

import (
	"errors"
	"strings"
)

// ParseRegistryDirectivesFromContent extracts all @registry directives and comments from proto file content.
//
// @registry directives have the format: // @registry:option:value
// The only option the validator currently interprets is "deprecated", which
// surfaces an informational note (see validation.Validator.checkDeprecated)
// carrying the value as the deprecation reason:
//   // @registry:deprecated:superseded by UserV2, remove after 2026-Q4
//
// Other options parse into a RegistryDirectiveNode and are preserved through
// normalization but are not otherwise interpreted.
//
// Returns directives and comments with line numbers for later association with AST nodes.
func ParseRegistryDirectivesFromContent(content string) (map[int]*RegistryDirectiveNode, map[int][]*CommentNode, error) {
	directives := make(map[int]*RegistryDirectiveNode)
	comments := make(map[int][]*CommentNode)

	lines := strings.Split(content, "\n")
	inBlockComment := false

	for lineNum, line := range lines {
		originalLine := line
		line = strings.TrimSpace(line)

		// Handle block comments
		if strings.Contains(line, "/*") {
			inBlockComment = true

			// Check if block comment ends on same line
			if strings.Contains(line, "*/") {
				inBlockComment = false
				// Extract text between /* and */
				blockText := extractBlockCommentText(line)
				if IsRegistryDirective(blockText) {
					directive, err := ExtractRegistryDirective(blockText, lineNum+1, 0)
					if err != nil {
						return nil, nil, err
					}
					directives[lineNum+1] = directive
				}
				continue
			}

			// Start of multi-line block comment
			// Extract any text after /*
			afterStart := line[strings.Index(line, "/*")+2:]
			afterStart = strings.TrimSpace(afterStart)
			if afterStart != "" && IsRegistryDirective(afterStart) {
				directive, err := ExtractRegistryDirective(afterStart, lineNum+1, 0)
				if err != nil {
					return nil, nil, err
				}
				directives[lineNum+1] = directive
			}
			continue
		}

		if inBlockComment {
			// Check if this line ends the block comment
			if strings.Contains(line, "*/") {
				inBlockComment = false
				// Extract text before */
				beforeEnd := line[:strings.Index(line, "*/")]
				beforeEnd = strings.TrimSpace(strings.TrimPrefix(beforeEnd, "*"))
				beforeEnd = strings.TrimSpace(beforeEnd)
				if beforeEnd != "" && IsRegistryDirective(beforeEnd) {
					directive, err := ExtractRegistryDirective(beforeEnd, lineNum+1, 0)
					if err != nil {
						return nil, nil, err
					}
					directives[lineNum+1] = directive
				}
				continue
			}

			// Line inside block comment
			commentLine := strings.TrimPrefix(line, "*")
			commentLine = strings.TrimSpace(commentLine)
			if commentLine != "" && IsRegistryDirective(commentLine) {
				directive, err := ExtractRegistryDirective(commentLine, lineNum+1, 0)
				if err != nil {
					return nil, nil, err
				}
				directives[lineNum+1] = directive
			}
			continue
		}

		// Check for line comments
		if strings.HasPrefix(line, "//") {
			commentText := strings.TrimPrefix(line, "//")
			commentText = strings.TrimSpace(commentText)

			if IsRegistryDirective(commentText) {
				directive, err := ExtractRegistryDirective(commentText, lineNum+1, 0)
				if err != nil {
					return nil, nil, err
				}
				directives[lineNum+1] = directive
			} else {
				comment := &CommentNode{
					Text: originalLine,
					Pos: Position{
						Line:   lineNum + 1,
						Column: 0,
						Offset: 0,
					},
				}
				comments[lineNum+1] = append(comments[lineNum+1], comment)
			}
		}
	}

	return directives, comments, nil
}

// extractBlockCommentText extracts text from a single-line block comment /* ... */
func extractBlockCommentText(line string) string {
	start := strings.Index(line, "/*")
	end := strings.Index(line, "*/")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	text := line[start+2 : end]
	return strings.TrimSpace(text)
}

// IsRegistryDirective checks if a comment text contains a registry directive.
// A registry directive starts with @registry: followed by option:value
func IsRegistryDirective(text string) bool {
	return strings.HasPrefix(text, "@registry:")
}

// ExtractRegistryDirective extracts a registry directive from comment text.
// Expected format: @registry:option:value
// Returns a RegistryDirectiveNode with the parsed option and value.
func ExtractRegistryDirective(text string, line, column int) (*RegistryDirectiveNode, error) {
	// Remove the @registry: prefix
	if !strings.HasPrefix(text, "@registry:") {
		return nil, errors.New("not a registry directive")
	}

	directive := strings.TrimPrefix(text, "@registry:")

	// Split on the second colon to get option and value
	parts := strings.SplitN(directive, ":", 2)
	if len(parts) != 2 {
		return nil, errors.New("invalid registry directive format, expected @registry:option:value")
	}

	return &RegistryDirectiveNode{
		Option: strings.TrimSpace(parts[0]),
		Value:  strings.TrimSpace(parts[1]),
		Pos: Position{
			Line:   line,
			Column: column,
			Offset: 0,
		},
	}, nil
}

// AssociateRegistryDirectivesWithNode associates registry directives and comments with AST nodes
// based on line number proximity. Directives/comments that appear immediately before a node
// are associated with that node.
func AssociateRegistryDirectivesWithNode(
	node interface{},
	directives map[int]*RegistryDirectiveNode,
	comments map[int][]*CommentNode,
	startLine int,
) {
	// Look for directives/comments in the 3 lines before the node
	// This handles cases where there are multiple comments before a declaration
	// but prevents directives from being associated too far away
	for line := startLine - 3; line < startLine; line++ {
		if line < 1 {
			continue
		}

		// Check if this node type supports registry directives
		switch n := node.(type) {
		case *RootNode:
			if directive, ok := directives[line]; ok {
				n.RegistryDirectives = append(n.RegistryDirectives, directive)
			}
			if commentList, ok := comments[line]; ok {
				n.Comments = append(n.Comments, commentList...)
			}
		case *SyntaxNode:
			if directive, ok := directives[line]; ok {
				n.RegistryDirectives = append(n.RegistryDirectives, directive)
			}
			if commentList, ok := comments[line]; ok {
				n.Comments = append(n.Comments, commentList...)
			}
		case *PackageNode:
			if directive, ok := directives[line]; ok {
				n.RegistryDirectives = append(n.RegistryDirectives, directive)
			}
			if commentList, ok := comments[line]; ok {
				n.Comments = append(n.Comments, commentList...)
			}
		case *ImportNode:
			if directive, ok := directives[line]; ok {
				n.RegistryDirectives = append(n.RegistryDirectives, directive)
			}
			if commentList, ok := comments[line]; ok {
				n.Comments = append(n.Comments, commentList...)
			}
		case *OptionNode:
			if directive, ok := directives[line]; ok {
				n.RegistryDirectives = append(n.RegistryDirectives, directive)
			}
			if commentList, ok := comments[line]; ok {
				n.Comments = append(n.Comments, commentList...)
			}
		case *MessageNode:
			if directive, ok := directives[line]; ok {
				n.RegistryDirectives = append(n.RegistryDirectives, directive)
			}
			if commentList, ok := comments[line]; ok {
				n.Comments = append(n.Comments, commentList...)
			}
		case *FieldNode:
			if directive, ok := directives[line]; ok {
				n.RegistryDirectives = append(n.RegistryDirectives, directive)
			}
			if commentList, ok := comments[line]; ok {
				n.Comments = append(n.Comments, commentList...)
			}
		case *EnumNode:
			if directive, ok := directives[line]; ok {
				n.RegistryDirectives = append(n.RegistryDirectives, directive)
			}
			if commentList, ok := comments[line]; ok {
				n.Comments = append(n.Comments, commentList...)
			}
		case *EnumValueNode:
			if directive, ok := directives[line]; ok {
				n.RegistryDirectives = append(n.RegistryDirectives, directive)
			}
			if commentList, ok := comments[line]; ok {
				n.Comments = append(n.Comments, commentList...)
			}
		case *ServiceNode:
			if directive, ok := directives[line]; ok {
				n.RegistryDirectives = append(n.RegistryDirectives, directive)
			}
			if commentList, ok := comments[line]; ok {
				n.Comments = append(n.Comments, commentList...)
			}
		case *RPCNode:
			if directive, ok := directives[line]; ok {
				n.RegistryDirectives = append(n.RegistryDirectives, directive)
			}
			if commentList, ok := comments[line]; ok {
				n.Comments = append(n.Comments, commentList...)
			}
		}
	}
}
