package gather

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/signadot/gatherconv/debug"
	"github.com/signadot/gatherconv/encode"
	"github.com/signadot/gatherconv/ir"
)

// Server is one output record.
type Server struct {
	ID        string
	Nickname  *ir.Node
	Timestamp *ir.Node
	Stats     *ir.Node
	Counters  *ir.Node
}

// ToIR gives the record as {nickname, timestamp, data: {stats, counters}}.
func (s *Server) ToIR() *ir.Node {
	return ir.FromKeyVals([]ir.KeyVal{
		{Key: "nickname", Val: s.Nickname},
		{Key: "timestamp", Val: s.Timestamp},
		{Key: "data", Val: ir.FromKeyVals([]ir.KeyVal{
			{Key: "stats", Val: s.Stats},
			{Key: "counters", Val: s.Counters},
		})},
	})
}

type Document struct {
	Servers []*Server
	Summary *Summary
}

func (d *Document) ToIR() *ir.Node {
	servers := make([]*ir.Node, len(d.Servers))
	for i, s := range d.Servers {
		servers[i] = s.ToIR()
	}
	kvs := []ir.KeyVal{{Key: "servers", Val: ir.FromSlice(servers)}}
	if d.Summary != nil {
		kvs = append(kvs, ir.KeyVal{Key: "summary", Val: d.Summary.ToIR()})
	}
	return ir.FromKeyVals(kvs)
}

// Convert projects each record of the server mapping into a Server, in
// mapping order.
func Convert(ctx context.Context, mapping *ir.Node, opts ...ConvertOption) (*Document, error) {
	cs := &convState{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(cs)
	}
	if mapping == nil || mapping.Type != ir.ObjectType {
		return nil, fmt.Errorf("%w: must be an object", ErrBadMapping)
	}
	var sel *selector
	if cs.sel != "" {
		var err error
		sel, err = newSelector(cs.sel)
		if err != nil {
			return nil, err
		}
	}
	doc := &Document{Servers: make([]*Server, 0, len(mapping.Fields))}
	for i, field := range mapping.Fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key := field.String
		srv, err := project(key, mapping.Values[i])
		if err != nil {
			if !cs.lenient {
				return nil, err
			}
			cs.logger.Warn("skipping server", "key", key, "error", err)
			continue
		}
		if sel != nil {
			ok, err := sel.match(srv)
			if err != nil {
				return nil, fmt.Errorf("server %q: %w", key, err)
			}
			if !ok {
				if debug.Convert() {
					debug.Logf("convert: %s not selected\n", key)
				}
				continue
			}
		}
		if debug.Convert() {
			debug.Logf("convert: %s %s\n", key, encode.MustString(srv.ToIR()))
		}
		doc.Servers = append(doc.Servers, srv)
	}
	if cs.summary {
		doc.Summary = Summarize(doc.Servers)
	}
	return doc, nil
}

func project(key string, rec *ir.Node) (*Server, error) {
	srv := &Server{ID: key}
	if srv.Nickname = ir.Get(rec, "nickname"); srv.Nickname == nil {
		return nil, &FieldMissingError{Key: key, Field: "nickname"}
	}
	if srv.Timestamp = ir.Get(rec, "timestamp"); srv.Timestamp == nil {
		return nil, &FieldMissingError{Key: key, Field: "timestamp"}
	}
	stats := ir.Get(rec, "stats")
	if stats == nil {
		return nil, &FieldMissingError{Key: key, Field: "stats"}
	}
	if srv.Stats = ir.Get(stats, "stats"); srv.Stats == nil {
		return nil, &FieldMissingError{Key: key, Field: "stats.stats"}
	}
	if srv.Counters = ir.Get(stats, "counters"); srv.Counters == nil {
		return nil, &FieldMissingError{Key: key, Field: "stats.counters"}
	}
	return srv, nil
}
