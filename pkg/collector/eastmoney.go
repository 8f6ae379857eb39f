package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"PatternRadar/pkg/model"
)

const (
	defaultEastMoneyQuoteURL = "http://push2.eastmoney.com/api/qt/stock/get"
	defaultEastMoneyListURL  = "http://push2.eastmoney.com/api/qt/clist/get"

	// fltt=2 时价格为实际数值
	eastMoneyQuoteFields = "f43,f44,f45,f46,f47,f48,f51,f52,f57,f58,f60,f116,f168"
)

// EastMoneyClient 东方财富个股行情（备用数据源）
type EastMoneyClient struct {
	quoteURL string
	client   *http.Client
}

// NewEastMoneyClient 创建东方财富行情客户端
func NewEastMoneyClient(quoteURL string, timeout time.Duration) *EastMoneyClient {
	if quoteURL == "" {
		quoteURL = defaultEastMoneyQuoteURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EastMoneyClient{quoteURL: quoteURL, client: &http.Client{Timeout: timeout}}
}

// Name 数据源名称
func (c *EastMoneyClient) Name() string { return "eastmoney" }

// FetchQuote 获取单只股票实时行情
func (c *EastMoneyClient) FetchQuote(ctx context.Context, code string) (*model.QuoteSnapshot, error) {
	secid, ok := SecID(code)
	if !ok {
		return nil, fmt.Errorf("东方财富不支持代码%s: %w", code, ErrUnavailable)
	}

	params := url.Values{}
	params.Set("secid", secid)
	params.Set("fields", eastMoneyQuoteFields)
	params.Set("fltt", "2")
	params.Set("invt", "2")

	body, err := get(ctx, c.client, c.quoteURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("获取东方财富行情失败: %w", err)
	}
	return parseEastMoneyQuote(body, code)
}

func parseEastMoneyQuote(body []byte, code string) (*model.QuoteSnapshot, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("东方财富响应不是JSON: %w", ErrUnavailable)
	}
	root := gjson.ParseBytes(body)
	data := root.Get("data")
	if root.Get("rc").Int() != 0 || !data.IsObject() {
		return nil, fmt.Errorf("东方财富无%s数据: %w", code, ErrUnavailable)
	}

	q := &model.QuoteSnapshot{
		Code:         code,
		Name:         strings.TrimSpace(data.Get("f58").String()),
		Current:      data.Get("f43").Float(),
		High:         data.Get("f44").Float(),
		Low:          data.Get("f45").Float(),
		Open:         data.Get("f46").Float(),
		Volume:       data.Get("f47").Int(),
		Amount:       data.Get("f48").Float(),
		LimitUp:      data.Get("f51").Float(),
		LimitDown:    data.Get("f52").Float(),
		PrevClose:    data.Get("f60").Float(),
		MarketCap:    data.Get("f116").Float(),
		TurnoverRate: data.Get("f168").Float(),
		Source:       "eastmoney",
		FetchedAt:    time.Now(),
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("东方财富行情%s: %w", code, ErrUnavailable)
	}
	return q, nil
}

// SecID 东方财富证券标识：1. 上交所，0. 深交所/北交所
func SecID(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if len(code) != 6 {
		return "", false
	}
	if _, err := strconv.Atoi(code); err != nil {
		return "", false
	}
	switch code[0] {
	case '6', '5', '9':
		return "1." + code, true
	case '0', '3', '1', '4', '8':
		return "0." + code, true
	}
	return "", false
}
