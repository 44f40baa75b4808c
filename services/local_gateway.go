package services

import (
	"context"

	"github.com/GrainArc/CragTopo/editor"
)

// LocalGateway 进程内的持久化网关，供服务端持有的编辑会话使用
type LocalGateway struct {
	topos    *TopoService
	username string
}

func NewLocalGateway(topos *TopoService, username string) *LocalGateway {
	return &LocalGateway{topos: topos, username: username}
}

func (g *LocalGateway) SubmitLine(ctx context.Context, req editor.SubmitRequest) (editor.SubmitResult, error) {
	return g.topos.SubmitLine(ctx, req.TopoID, g.username, req)
}

func (g *LocalGateway) FetchSegments(ctx context.Context, topoID uint) ([]editor.LineSegment, error) {
	return g.topos.Segments(ctx, topoID)
}
