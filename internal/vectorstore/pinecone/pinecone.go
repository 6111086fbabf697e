// Package pinecone implements rag.VectorIndex and the ingestion upserter on
// top of a Pinecone serverless index.
package pinecone

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/pinecone-io/go-pinecone/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tbourn/faq-chat-backend/internal/rag"
	"github.com/tbourn/faq-chat-backend/internal/vectorstore"
)

// Store talks to one Pinecone index host. Index connections are opened
// lazily and cached per namespace.
type Store struct {
	client *pinecone.Client
	host   string

	mu    sync.Mutex
	conns map[string]*pinecone.IndexConnection
}

// New builds a Store for the index served at host.
func New(apiKey, host string) (*Store, error) {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(host) == "" {
		return nil, errors.New("pinecone: api key and index host are required")
	}
	pc, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &Store{client: pc, host: host, conns: map[string]*pinecone.IndexConnection{}}, nil
}

func (s *Store) conn(namespace string) (*pinecone.IndexConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.conns[namespace]; ok {
		return c, nil
	}
	c, err := s.client.Index(pinecone.NewIndexConnParams{Host: s.host, Namespace: namespace})
	if err != nil {
		return nil, err
	}
	s.conns[namespace] = c
	return c, nil
}

// Query runs a nearest-neighbour search by vector values.
func (s *Store) Query(ctx context.Context, req rag.QueryRequest) ([]rag.Match, error) {
	c, err := s.conn(req.Namespace)
	if err != nil {
		return nil, err
	}
	res, err := c.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          req.Vector,
		TopK:            uint32(req.TopK),
		IncludeMetadata: req.IncludeMetadata,
	})
	if err != nil {
		return nil, err
	}
	out := make([]rag.Match, 0, len(res.Matches))
	for _, m := range res.Matches {
		if m == nil {
			continue
		}
		out = append(out, toMatch(m))
	}
	return out, nil
}

// Upsert writes recs into namespace in a single request. Callers batch.
func (s *Store) Upsert(ctx context.Context, namespace string, recs []vectorstore.Record) error {
	if len(recs) == 0 {
		return nil
	}
	c, err := s.conn(namespace)
	if err != nil {
		return err
	}
	vecs := make([]*pinecone.Vector, 0, len(recs))
	for _, r := range recs {
		md, err := toMetadata(r)
		if err != nil {
			return err
		}
		vecs = append(vecs, &pinecone.Vector{Id: r.ID, Values: r.Values, Metadata: md})
	}
	_, err = c.UpsertVectors(ctx, vecs)
	return err
}

// Close releases all cached index connections.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for ns, c := range s.conns {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(s.conns, ns)
	}
	return errors.Join(errs...)
}

func toMetadata(r vectorstore.Record) (*pinecone.Metadata, error) {
	fields := map[string]any{
		vectorstore.MetaID:       r.ID,
		vectorstore.MetaQuestion: r.Question,
		vectorstore.MetaAnswer:   r.Answer,
	}
	if r.Category != "" {
		fields[vectorstore.MetaCategory] = r.Category
	}
	return structpb.NewStruct(fields)
}

func toMatch(m *pinecone.ScoredVector) rag.Match {
	out := rag.Match{Score: float64(m.Score)}
	if m.Vector == nil {
		return out
	}
	out.ID = m.Vector.Id
	if m.Vector.Metadata == nil {
		return out
	}
	f := m.Vector.Metadata.GetFields()
	out.Question = stringField(f, vectorstore.MetaQuestion)
	out.Answer = stringField(f, vectorstore.MetaAnswer)
	if c := stringField(f, vectorstore.MetaCategory); c != nil {
		out.Category = *c
	}
	return out
}

func stringField(f map[string]*structpb.Value, key string) *string {
	v, ok := f[key]
	if !ok || v == nil {
		return nil
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil
	}
	s := sv.StringValue
	return &s
}
