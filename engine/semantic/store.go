// Package semantic is the sole owner of all Qdrant operations. The store is
// read-only: the collection is populated by a separate ingestion process.
package semantic

import (
	"context"
	"crypto/tls"
	"fmt"
	"strconv"

	"github.com/jurisearch/jurisearch/engine/domain"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// Config describes how to reach the Qdrant cluster and which collection to
// query. APIKey and TLS are required for cloud clusters; both empty is the
// local dev setup.
type Config struct {
	Addr       string
	APIKey     string
	TLS        bool
	Collection string
	Dims       int
}

// PointsSearcher is the slice of the Qdrant points API this store uses.
type PointsSearcher interface {
	Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error)
}

// CollectionsLister is the slice of the Qdrant collections API this store uses.
type CollectionsLister interface {
	List(ctx context.Context, in *pb.ListCollectionsRequest, opts ...grpc.CallOption) (*pb.ListCollectionsResponse, error)
}

// Store wraps a Qdrant gRPC connection scoped to one collection.
type Store struct {
	conn        *grpc.ClientConn
	points      PointsSearcher
	collections CollectionsLister
	collection  string
	dims        int
}

// New dials Qdrant and verifies that the configured collection exists.
// A missing collection is a configuration error and fails construction,
// so it surfaces before any user query runs.
func New(ctx context.Context, cfg Config) (*Store, error) {
	opts := []grpc.DialOption{}
	if cfg.TLS {
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{})))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	if cfg.APIKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}

	conn, err := grpc.NewClient(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", cfg.Addr, err)
	}

	s := &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  cfg.Collection,
		dims:        cfg.Dims,
	}
	if err := s.CheckCollection(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// NewWithClients builds a Store from pre-constructed clients. Used in tests.
func NewWithClients(points PointsSearcher, collections CollectionsLister, collection string, dims int) *Store {
	return &Store{points: points, collections: collections, collection: collection, dims: dims}
}

// Close closes the underlying gRPC connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// CheckCollection verifies the collection exists on the cluster.
func (s *Store) CheckCollection(ctx context.Context) error {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("semantic: list collections: %w: %w", domain.ErrIndexUnavailable, err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == s.collection {
			return nil
		}
	}
	return fmt.Errorf("semantic: collection %q: %w", s.collection, domain.ErrCollectionNotFound)
}

// Search performs k-NN similarity search and returns at most limit hits,
// nearest first, with decoded payloads. The query vector must match the
// collection's dimension exactly; anything else is a configuration bug and
// fails loudly rather than being truncated or padded.
func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]Hit, error) {
	if len(vector) != s.dims {
		return nil, fmt.Errorf("semantic: got vector of %d dims, collection expects %d: %w",
			len(vector), s.dims, domain.ErrVectorDimension)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("semantic: limit must be positive, got %d", limit)
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("semantic: search: %w: %w", domain.ErrIndexUnavailable, err)
	}

	hits := make([]Hit, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		payload, err := decodePayload(r.GetPayload())
		if err != nil {
			return nil, fmt.Errorf("semantic: hit %s: %w", pointID(r.GetId()), err)
		}
		hits[i] = Hit{
			ID:      pointID(r.GetId()),
			Score:   r.GetScore(),
			Payload: payload,
		}
	}
	return hits, nil
}

func pointID(id *pb.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

// decodePayload converts the protobuf payload map into plain Go values.
func decodePayload(payload map[string]*pb.Value) (map[string]any, error) {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		val, err := decodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

func decodeValue(v *pb.Value) (any, error) {
	if v == nil || v.GetKind() == nil {
		return nil, domain.ErrMalformedPayload
	}
	switch kind := v.GetKind().(type) {
	case *pb.Value_NullValue:
		return nil, nil
	case *pb.Value_StringValue:
		return kind.StringValue, nil
	case *pb.Value_IntegerValue:
		return kind.IntegerValue, nil
	case *pb.Value_DoubleValue:
		return kind.DoubleValue, nil
	case *pb.Value_BoolValue:
		return kind.BoolValue, nil
	case *pb.Value_ListValue:
		items := kind.ListValue.GetValues()
		list := make([]any, len(items))
		for i, item := range items {
			dec, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			list[i] = dec
		}
		return list, nil
	case *pb.Value_StructValue:
		return decodePayload(kind.StructValue.GetFields())
	default:
		return nil, fmt.Errorf("unknown value kind %T: %w", kind, domain.ErrMalformedPayload)
	}
}

// apiKeyInterceptor attaches the Qdrant cloud api-key to every RPC.
func apiKeyInterceptor(key string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", key)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
