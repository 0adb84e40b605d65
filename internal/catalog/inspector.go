package catalog

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pgschema/pgpostgis/array"
	"github.com/pgschema/pgpostgis/index"
	"github.com/pgschema/pgpostgis/internal/logger"
)

// DefaultConcurrency bounds the number of tables inspected at once.
const DefaultConcurrency = 4

// Inspector reconstructs index metadata for one database. It owns the
// operator class cache for that database.
type Inspector struct {
	q             Querier
	opclasses     *index.OpClassCache
	reconstructor *index.Reconstructor

	// Concurrency bounds Tables; values below one mean DefaultConcurrency.
	Concurrency int
}

// NewInspector creates an Inspector. A nil miner selects the pattern miner.
func NewInspector(q Querier, miner index.Miner) *Inspector {
	return &Inspector{
		q: q,
		opclasses: index.NewOpClassCache(func(ctx context.Context) ([]string, error) {
			return OpClassNames(ctx, q)
		}),
		reconstructor: &index.Reconstructor{Miner: miner},
	}
}

// Indexes returns the reconstructable indexes of table.
func (in *Inspector) Indexes(ctx context.Context, table string) ([]*index.Descriptor, error) {
	opclasses, err := in.opclasses.Names(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := IndexRows(ctx, in.q, table)
	if err != nil {
		return nil, err
	}
	logger.Get().Debug("Inspecting indexes", "table", table, "count", len(rows))

	return in.reconstructor.ReconstructAll(rows, func(row index.RawRow) (index.ColumnLookup, error) {
		return ColumnLookup(ctx, in.q, row)
	}, opclasses)
}

// Tables inspects several tables concurrently. The first failure cancels the
// remaining work.
func (in *Inspector) Tables(ctx context.Context, tables []string) (map[string][]*index.Descriptor, error) {
	limit := in.Concurrency
	if limit < 1 {
		limit = DefaultConcurrency
	}

	var mu sync.Mutex
	result := make(map[string][]*index.Descriptor, len(tables))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, table := range tables {
		g.Go(func() error {
			descriptors, err := in.Indexes(ctx, table)
			if err != nil {
				return fmt.Errorf("table %s: %w", table, err)
			}
			mu.Lock()
			result[table] = descriptors
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// ArrayContext builds the codec context for text values read from this
// database connection.
func (in *Inspector) ArrayContext(ctx context.Context) (*array.Context, error) {
	enc, err := ClientEncoding(ctx, in.q)
	if err != nil {
		return nil, err
	}
	return array.NewContext(enc, array.ServerQuoting)
}

// Columns returns the column specs of table.
func (in *Inspector) Columns(ctx context.Context, table string) ([]array.ColumnSpec, error) {
	return Columns(ctx, in.q, table)
}

// ServerInfo describes the connected server.
type ServerInfo struct {
	Version        string
	ServerEncoding string
	ClientEncoding string
	Extensions     []string
}

// Server reads the server version, encodings and installed extensions.
func (in *Inspector) Server(ctx context.Context) (*ServerInfo, error) {
	var (
		info ServerInfo
		err  error
	)
	if info.Version, err = ServerVersion(ctx, in.q); err != nil {
		return nil, err
	}
	if info.ServerEncoding, err = ServerEncoding(ctx, in.q); err != nil {
		return nil, err
	}
	if info.ClientEncoding, err = ClientEncoding(ctx, in.q); err != nil {
		return nil, err
	}
	if info.Extensions, err = Extensions(ctx, in.q); err != nil {
		return nil, err
	}
	return &info, nil
}
