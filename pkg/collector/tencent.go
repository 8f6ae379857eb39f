package collector

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"

	"PatternRadar/pkg/model"
)

const defaultTencentURL = "http://qt.gtimg.cn"

// 腾讯行情字段下标（按 ~ 切分）
const (
	tqName      = 1
	tqCurrent   = 3
	tqPrevClose = 4
	tqOpen      = 5
	tqHigh      = 33
	tqLow       = 34
	tqVolume    = 36
	tqAmount    = 37 // 万元
	tqTurnover  = 38
	tqMarketCap = 45 // 亿元
	tqLimitUp   = 47
	tqLimitDown = 48

	tqMinFields = 35
)

// TencentClient 腾讯财经实时行情（GBK 编码的 ~ 分隔文本）
type TencentClient struct {
	baseURL string
	client  *http.Client
}

// NewTencentClient 创建腾讯行情客户端
func NewTencentClient(baseURL string, timeout time.Duration) *TencentClient {
	if baseURL == "" {
		baseURL = defaultTencentURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TencentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Name 数据源名称
func (c *TencentClient) Name() string { return "tencent" }

// FetchQuote 获取单只股票实时行情
func (c *TencentClient) FetchQuote(ctx context.Context, code string) (*model.QuoteSnapshot, error) {
	fields, err := c.fetchFields(ctx, TencentSymbol(code))
	if err != nil {
		return nil, err
	}
	if len(fields) < tqMinFields {
		return nil, fmt.Errorf("腾讯行情字段不足(%d): %w", len(fields), ErrUnavailable)
	}

	q := &model.QuoteSnapshot{
		Code:         code,
		Name:         strings.TrimSpace(fields[tqName]),
		Current:      num(fields, tqCurrent),
		PrevClose:    num(fields, tqPrevClose),
		Open:         num(fields, tqOpen),
		High:         num(fields, tqHigh),
		Low:          num(fields, tqLow),
		Volume:       int64(num(fields, tqVolume)),
		Amount:       num(fields, tqAmount) * 1e4,
		TurnoverRate: num(fields, tqTurnover),
		MarketCap:    num(fields, tqMarketCap) * 1e8,
		LimitUp:      num(fields, tqLimitUp),
		LimitDown:    num(fields, tqLimitDown),
		Source:       c.Name(),
		FetchedAt:    time.Now(),
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("腾讯行情%s: %w", code, ErrUnavailable)
	}
	return q, nil
}

// FetchIndex 获取指数涨跌幅
func (c *TencentClient) FetchIndex(ctx context.Context, symbol string) (*model.IndexQuote, error) {
	fields, err := c.fetchFields(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(fields) <= tqOpen {
		return nil, fmt.Errorf("腾讯指数字段不足(%d): %w", len(fields), ErrUnavailable)
	}

	idx := &model.IndexQuote{
		Symbol:    symbol,
		Name:      strings.TrimSpace(fields[tqName]),
		Current:   num(fields, tqCurrent),
		PrevClose: num(fields, tqPrevClose),
	}
	if idx.PrevClose > 0 {
		idx.ChangePercent = round2((idx.Current - idx.PrevClose) / idx.PrevClose * 100)
	}
	return idx, nil
}

func (c *TencentClient) fetchFields(ctx context.Context, symbol string) ([]string, error) {
	body, err := get(ctx, c.client, fmt.Sprintf("%s/q=%s", c.baseURL, symbol), map[string]string{
		"Referer": "https://stockapp.finance.qq.com/",
	})
	if err != nil {
		return nil, fmt.Errorf("获取腾讯行情失败: %w", err)
	}

	text, err := simplifiedchinese.GBK.NewDecoder().Bytes(body)
	if err != nil {
		return nil, fmt.Errorf("GBK解码失败: %w", err)
	}
	return splitTencent(string(text))
}

// splitTencent 解析 v_sh600000="1~浦发银行~600000~...";
func splitTencent(text string) ([]string, error) {
	parts := strings.Split(text, `"`)
	if len(parts) < 2 || !strings.Contains(parts[1], "~") {
		return nil, fmt.Errorf("无效的腾讯行情响应: %w", ErrUnavailable)
	}
	return strings.Split(parts[1], "~"), nil
}

// TencentSymbol 加市场前缀：6/5 上交所，0/3/1 深交所，4/8 北交所
func TencentSymbol(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.HasPrefix(code, "sh") || strings.HasPrefix(code, "sz") || strings.HasPrefix(code, "bj") {
		return code
	}
	switch code[0] {
	case '6', '5':
		return "sh" + code
	case '0', '3', '1':
		return "sz" + code
	case '4', '8':
		return "bj" + code
	}
	return code
}

func num(fields []string, i int) float64 {
	if i >= len(fields) {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
	if err != nil {
		return 0
	}
	return v
}
