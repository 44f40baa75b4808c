// Package gateway 通过 HTTP 接口实现编辑器的持久化网关，供远程宿主（桌面端、命令行）使用
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/GrainArc/CragTopo/editor"
)

// DefaultTimeout 单次请求超时
const DefaultTimeout = 15 * time.Second

// HTTPGateway 调用 /api/topos/:id/lines 接口
type HTTPGateway struct {
	BaseURL string
	// Token 为空时服务端按只读处理
	Token  string
	Client *http.Client
}

// NewHTTPGateway 创建网关
func NewHTTPGateway(baseURL, token string) *HTTPGateway {
	return &HTTPGateway{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: DefaultTimeout},
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (g *HTTPGateway) linesURL(topoID uint) string {
	return fmt.Sprintf("%s/api/topos/%d/lines", g.BaseURL, topoID)
}

// SubmitLine 提交新建/替换/删除请求
func (g *HTTPGateway) SubmitLine(ctx context.Context, req editor.SubmitRequest) (editor.SubmitResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return editor.SubmitResult{}, fmt.Errorf("编码请求失败: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.linesURL(req.TopoID), bytes.NewReader(payload))
	if err != nil {
		return editor.SubmitResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	body, status, err := g.do(httpReq)
	if err != nil {
		return editor.SubmitResult{}, err
	}
	switch {
	case status == http.StatusConflict:
		return editor.SubmitResult{}, &editor.ConflictError{Label: req.LineLabel}
	case status < 200 || status >= 300:
		return editor.SubmitResult{}, decodeError(status, body)
	}
	var res editor.SubmitResult
	if err := json.Unmarshal(body, &res); err != nil {
		return editor.SubmitResult{}, &editor.GatewayError{Status: status, Err: fmt.Errorf("解析响应失败: %w", err)}
	}
	if !res.OK {
		return editor.SubmitResult{}, &editor.GatewayError{Status: status, Detail: res.Message}
	}
	return res, nil
}

// FetchSegments 拉取拓扑图的权威线段集合
func (g *HTTPGateway) FetchSegments(ctx context.Context, topoID uint) ([]editor.LineSegment, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.linesURL(topoID), nil)
	if err != nil {
		return nil, err
	}
	body, status, err := g.do(httpReq)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, decodeError(status, body)
	}
	return editor.DecodeCollection(body)
}

func (g *HTTPGateway) do(req *http.Request) ([]byte, int, error) {
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}
	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, &editor.GatewayError{Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, resp.StatusCode, &editor.GatewayError{Status: resp.StatusCode, Err: err}
	}
	return body, resp.StatusCode, nil
}

func decodeError(status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	detail := eb.Details
	if detail == "" {
		detail = eb.Error
	}
	return &editor.GatewayError{Status: status, Detail: detail}
}
