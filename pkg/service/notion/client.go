package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/domain/model"
)

// maxRichText is the Notion limit for a single rich text content
const maxRichText = 2000

// client implements Service interface
type client struct {
	api *notionapi.Client
}

// New creates a new Notion service with the provided API token
func New(token string, opts ...notionapi.ClientOption) (Service, error) {
	if token == "" {
		return nil, goerr.New("Notion API token is required")
	}

	return &client{
		api: notionapi.NewClient(
			notionapi.Token(token),
			append([]notionapi.ClientOption{notionapi.WithRetry(3)}, opts...)...,
		),
	}, nil
}

func (c *client) PublishTopic(ctx context.Context, databaseID string, topic *model.Topic) (string, error) {
	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: buildProperties(topic),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to create Notion page",
			goerr.V("database_id", databaseID), goerr.V(model.TopicIDKey, topic.ID))
	}
	return page.URL, nil
}

func buildProperties(t *model.Topic) notionapi.Properties {
	props := notionapi.Properties{
		PropertyTitle: notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(t.Title),
		},
		PropertyScore: notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: t.TotalScore,
		},
		PropertyCompetition: notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: t.CompetitionLevel.String()},
		},
		PropertySource: notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: t.Source.String()},
		},
	}

	if t.Category != "" {
		props[PropertyCategory] = notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: selectName(t.Category)},
		}
	}
	if t.RecommendedAngle != "" {
		props[PropertyAngle] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(t.RecommendedAngle),
		}
	}
	if len(t.Keywords) > 0 {
		options := make([]notionapi.Option, 0, len(t.Keywords))
		for _, k := range t.Keywords {
			if name := selectName(k); name != "" {
				options = append(options, notionapi.Option{Name: name})
			}
		}
		props[PropertyKeywords] = notionapi.MultiSelectProperty{
			Type:        notionapi.PropertyTypeMultiSelect,
			MultiSelect: options,
		}
	}

	return props
}

func richText(s string) []notionapi.RichText {
	if r := []rune(s); len(r) > maxRichText {
		s = string(r[:maxRichText])
	}
	return []notionapi.RichText{{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}}
}

// selectName strips commas, which Notion rejects in select option names.
func selectName(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ",", " "))
}
