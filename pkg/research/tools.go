package research

import (
	"context"

	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/registry"
)

// Tool names.
const (
	ToolSearch    = "search"
	ToolWikipedia = "wikipedia"
	ToolSave      = "save_text_to_file"
)

// SystemPrompt is the research assistant's instruction; format instructions are appended to it.
const SystemPrompt = "You are a research assistant that will help generate a research paper. " +
	"Answer the user query and use the necessary tools. " +
	"Wrap the output in this format and provide no other text."

type queryArgs struct {
	Query string `json:"query"`
}

type saveArgs struct {
	Data     string `json:"data"`
	Filename string `json:"filename"`
}

// Toolset groups the backends of the research tools.
type Toolset struct {
	Searcher  *Searcher
	Wikipedia *Wikipedia
	Saver     *Saver
}

// NewToolset creates a toolset with default backends saving into outputDir.
func NewToolset(outputDir string) Toolset {
	return Toolset{
		Searcher:  NewSearcher(),
		Wikipedia: NewWikipedia(),
		Saver:     NewSaver(outputDir),
	}
}

// Tools returns the research tools. Nil backends are skipped.
// Network failures are reported to the model as results, not faults.
func (ts Toolset) Tools() []registry.Entry {
	queryParam := []domain.Parameter{{Name: "query", Type: "string", Description: "What to look up.", Required: true}}

	var entries []registry.Entry
	if ts.Searcher != nil {
		entries = append(entries, registry.Entry{
			Tool: domain.Tool{
				Name:        ToolSearch,
				Description: "Search the web for information",
				Parameters:  queryParam,
			},
			Handler: registry.Typed(func(ctx context.Context, args queryArgs) (string, error) {
				out, err := ts.Searcher.Search(ctx, args.Query)
				if err != nil {
					return "Search failed: " + err.Error(), nil
				}
				return out, nil
			}),
		})
	}
	if ts.Wikipedia != nil {
		entries = append(entries, registry.Entry{
			Tool: domain.Tool{
				Name:        ToolWikipedia,
				Description: "A wrapper around Wikipedia. Useful for when you need to answer general questions about people, places, companies, facts, historical events, or other subjects. Input should be a search query.",
				Parameters:  queryParam,
			},
			Handler: registry.Typed(func(ctx context.Context, args queryArgs) (string, error) {
				out, err := ts.Wikipedia.Lookup(ctx, args.Query)
				if err != nil {
					return "Wikipedia lookup failed: " + err.Error(), nil
				}
				return out, nil
			}),
		})
	}
	if ts.Saver != nil {
		entries = append(entries, registry.Entry{
			Tool: domain.Tool{
				Name:        ToolSave,
				Description: "Saves structured research data to a text file.",
				Parameters: []domain.Parameter{
					{Name: "data", Type: "string", Description: "The text to save.", Required: true},
					{Name: "filename", Type: "string", Description: "Target file name, defaults to " + DefaultOutputFile + "."},
				},
			},
			Handler: registry.Typed(func(_ context.Context, args saveArgs) (string, error) {
				return ts.Saver.Save(args.Data, args.Filename)
			}),
		})
	}
	return entries
}
