package util

import (
	"encoding/base64"
	"time"

	"github.com/goccy/go-json"
)

// PageCursor 时间线游标，定位到 (created_at, id) 处
// 纳秒时间戳 + id 降序构成全序，并发写入下翻页不重不漏
type PageCursor struct {
	Ts int64  `json:"ts"`
	ID uint64 `json:"id"`
}

// EncodeCursor 将最后一条记录的排序位置编码为 Base64 字符串
func EncodeCursor(createdAt time.Time, id uint64) string {
	b, _ := json.Marshal(PageCursor{Ts: createdAt.UnixNano(), ID: id})
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeCursor 将前端传来的 Base64 字符串解码为游标，空串表示首页
func DecodeCursor(cursor string) (*PageCursor, error) {
	if cursor == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return nil, err
	}
	var c PageCursor
	if err = json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Time 游标对应的时间
func (c *PageCursor) Time() time.Time {
	return time.Unix(0, c.Ts)
}
