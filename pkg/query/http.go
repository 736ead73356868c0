package query

import (
	"context"
	"strings"

	"github.com/agentstation/kgsync/internal/transport"
	"github.com/agentstation/kgsync/pkg/constants"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/logging"
)

const searchQuery = `query Search($name: String!, $spaceId: UUID!, $first: Int!) {
  entities(
    filter: { name: { isInsensitive: $name } }
    spaceId: $spaceId
    first: $first
  ) {
    id
    name
    types { id }
  }
}`

const entityQuery = `query Entity($id: UUID!, $spaceId: UUID!) {
  entity(id: $id, spaceId: $spaceId) {
    id
    name
    description
    types { id }
    values(filter: { spaceId: { is: $spaceId } }) {
      propertyId
      value
      property { dataType }
    }
    relations(filter: { spaceId: { is: $spaceId } }) {
      id
      typeId
      toEntityId
    }
    backlinks(filter: { spaceId: { is: $spaceId } }) {
      id
      typeId
      fromEntityId
    }
  }
}`

// HTTP queries the indexer's GraphQL API.
type HTTP struct {
	client *transport.Client
	url    string
}

var _ Querier = (*HTTP)(nil)

// NewHTTP creates a querier for the GraphQL endpoint at url.
func NewHTTP(url string, client *transport.Client) *HTTP {
	return &HTTP{client: client, url: url}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse[T any] struct {
	Data   T          `json:"data"`
	Errors []gqlError `json:"errors"`
}

type wireRef struct {
	ID string `json:"id"`
}

type wireEntity struct {
	ID          string    `json:"id"`
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Types       []wireRef `json:"types"`
	Values      []struct {
		PropertyID string `json:"propertyId"`
		Value      string `json:"value"`
		Property   struct {
			DataType string `json:"dataType"`
		} `json:"property"`
	} `json:"values"`
	Relations []struct {
		ID         string `json:"id"`
		TypeID     string `json:"typeId"`
		ToEntityID string `json:"toEntityId"`
	} `json:"relations"`
	Backlinks []struct {
		ID           string `json:"id"`
		TypeID       string `json:"typeId"`
		FromEntityID string `json:"fromEntityId"`
	} `json:"backlinks"`
}

// Search implements Querier.
func (h *HTTP) Search(ctx context.Context, name string, namespace graph.ID) ([]graph.Candidate, error) {
	vars := map[string]any{"name": name, "spaceId": namespace.String(), "first": constants.SearchPageSize}
	data, err := post[struct {
		Entities []wireEntity `json:"entities"`
	}](ctx, h, searchQuery, vars)
	if err != nil {
		return nil, errors.WrapFetch("search", name, namespace.String(), err)
	}

	out := make([]graph.Candidate, 0, len(data.Entities))
	for _, w := range data.Entities {
		id, err := graph.ParseID(w.ID)
		if err != nil {
			return nil, errors.WrapFetch("search", name, namespace.String(), err)
		}
		c := graph.Candidate{ID: id, TypeIDs: parseIDs(w.Types)}
		if w.Name != nil {
			c.Name = *w.Name
		}
		out = append(out, c)
	}

	logging.Ctx(ctx).Debug().
		Str("name", name).
		Str("namespace", namespace.String()).
		Int("candidates", len(out)).
		Msg("Searched entities")
	return out, nil
}

// Entity implements Querier.
func (h *HTTP) Entity(ctx context.Context, id, namespace graph.ID) (*graph.Entity, error) {
	vars := map[string]any{"id": id.String(), "spaceId": namespace.String()}
	data, err := post[struct {
		Entity *wireEntity `json:"entity"`
	}](ctx, h, entityQuery, vars)
	if err != nil {
		return nil, errors.WrapFetch("entity", id.String(), namespace.String(), err)
	}
	if data.Entity == nil {
		return nil, nil
	}
	e, err := data.Entity.toEntity()
	if err != nil {
		return nil, errors.WrapFetch("entity", id.String(), namespace.String(), err)
	}
	return e, nil
}

// post sends a GraphQL request and folds GraphQL-level errors into the
// returned error.
func post[T any](ctx context.Context, h *HTTP, query string, vars map[string]any) (T, error) {
	var resp gqlResponse[T]
	if err := h.client.PostJSON(ctx, h.url, gqlRequest{Query: query, Variables: vars}, &resp); err != nil {
		return resp.Data, err
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}
		return resp.Data, errors.NewAPIError(h.url, 0, strings.Join(msgs, "; "))
	}
	return resp.Data, nil
}

func (w *wireEntity) toEntity() (*graph.Entity, error) {
	id, err := graph.ParseID(w.ID)
	if err != nil {
		return nil, err
	}
	e := &graph.Entity{ID: id, TypeIDs: parseIDs(w.Types)}
	if w.Name != nil {
		e.Name = *w.Name
	}
	if w.Description != nil {
		e.Description = *w.Description
	}
	for _, v := range w.Values {
		pid, err := graph.ParseID(v.PropertyID)
		if err != nil {
			return nil, err
		}
		e.Values = append(e.Values, graph.PropertyValue{
			PropertyID: pid,
			Value:      graph.Value{Type: graph.DataType(v.Property.DataType), Value: v.Value},
		})
	}
	for _, r := range w.Relations {
		rel, err := parseEdge(r.ID, r.TypeID, r.ToEntityID)
		if err != nil {
			return nil, err
		}
		e.Relations = append(e.Relations, graph.Relation{ID: rel[0], TypeID: rel[1], TargetID: rel[2]})
	}
	for _, b := range w.Backlinks {
		rel, err := parseEdge(b.ID, b.TypeID, b.FromEntityID)
		if err != nil {
			return nil, err
		}
		e.Backlinks = append(e.Backlinks, graph.Backlink{ID: rel[0], TypeID: rel[1], SourceID: rel[2]})
	}
	return e, nil
}

func parseEdge(ids ...string) ([3]graph.ID, error) {
	var out [3]graph.ID
	for i, s := range ids {
		id, err := graph.ParseID(s)
		if err != nil {
			return out, err
		}
		out[i] = id
	}
	return out, nil
}

// parseIDs keeps only well-formed IDs; type lists are informational.
func parseIDs(refs []wireRef) []graph.ID {
	out := make([]graph.ID, 0, len(refs))
	for _, r := range refs {
		if id, err := graph.ParseID(r.ID); err == nil {
			out = append(out, id)
		}
	}
	return out
}
