package service

import (
	"Lattice/internal/pkg/consts"
	"Lattice/internal/pkg/redis"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
)

// 过期令牌保留一段时间用于区分"过期"与"不存在"
// 已消费标记同理，用于区分重放与伪造
const (
	tokenRetention    = 24 * time.Hour
	consumedRetention = 24 * time.Hour
)

// issueScript 作废旧令牌并写入新令牌，必须是单个原子步骤：
// 并发签发同一 (账号, 用途) 时索引键只会指向一个存活令牌，
// 分步 GET/DEL/SET 会留下输掉竞争的令牌直到 TTL 自然过期
var issueScript = redisv9.NewScript(`
local old = redis.call('GET', KEYS[1])
if old then
  redis.call('DEL', ARGV[1] .. old)
end
redis.call('SET', ARGV[1] .. ARGV[2], ARGV[3], 'EX', tonumber(ARGV[4]))
redis.call('SET', KEYS[1], ARGV[2], 'EX', tonumber(ARGV[5]))
return 1
`)

// consumeScript 读取并失效令牌，必须是单个原子步骤：
// 并发消费同一令牌时恰好一个成功，其余看到已消费标记
// 返回 1=成功 0=不存在 2=已消费 3=已过期
var consumeScript = redisv9.NewScript(`
local v = redis.call('GET', KEYS[1])
if v then
  redis.call('DEL', KEYS[1])
  local exp = tonumber(string.match(v, '|(%d+)$'))
  if exp and exp < tonumber(ARGV[2]) then
    return {3, ''}
  end
  redis.call('SET', KEYS[2], v, 'EX', ARGV[1])
  return {1, v}
end
if redis.call('EXISTS', KEYS[2]) == 1 then
  return {2, ''}
end
return {0, ''}
`)

type TokenService interface {
	Issue(ctx context.Context, purpose string, accountID uint64, ttl time.Duration) (string, error)
	Consume(ctx context.Context, token string, purpose string) (uint64, error)
}

type TokenServiceImpl struct{}

func NewTokenService() TokenService {
	return &TokenServiceImpl{}
}

// Issue 签发一次性令牌；同一 (账号, 用途) 重新签发会作废之前未消费的令牌，
// 防止旧邮件链接在新链接发出后仍可使用
func (s *TokenServiceImpl) Issue(ctx context.Context, purpose string, accountID uint64, ttl time.Duration) (string, error) {
	value := strings.ReplaceAll(uuid.NewString(), "-", "")
	payload := fmt.Sprintf("%d|%d", accountID, time.Now().Add(ttl).Unix())

	keys := []string{s.indexKey(purpose, accountID)}
	args := []interface{}{
		s.tokenKey(purpose, ""),
		value,
		payload,
		int((ttl + tokenRetention).Seconds()),
		int(ttl.Seconds()),
	}
	if err := issueScript.Run(ctx, redis.GetRdbClient(), keys, args...).Err(); err != nil {
		return "", err
	}

	return value, nil
}

// Consume 消费令牌并返回其绑定的账号 id
// 用途是键的一部分，用途不匹配与不存在不可区分，避免泄露令牌存在性
func (s *TokenServiceImpl) Consume(ctx context.Context, token string, purpose string) (uint64, error) {
	rdb := redis.GetRdbClient()
	keys := []string{s.tokenKey(purpose, token), s.consumedKey(purpose, token)}
	args := []interface{}{int(consumedRetention.Seconds()), time.Now().Unix()}

	res, err := consumeScript.Run(ctx, rdb, keys, args...).Slice()
	if err != nil {
		return 0, err
	}

	code, _ := res[0].(int64)
	switch code {
	case 1:
		payload, _ := res[1].(string)
		accountID, err := parseTokenPayload(payload)
		if err != nil {
			return 0, err
		}
		return accountID, nil
	case 2:
		return 0, ErrTokenAlreadyConsumed
	case 3:
		return 0, ErrTokenExpired
	default:
		return 0, ErrTokenNotFound
	}
}

func (s *TokenServiceImpl) tokenKey(purpose, value string) string {
	return consts.TokenKey + purpose + ":" + value
}

func (s *TokenServiceImpl) consumedKey(purpose, value string) string {
	return consts.TokenConsumedKey + purpose + ":" + value
}

func (s *TokenServiceImpl) indexKey(purpose string, accountID uint64) string {
	return consts.TokenIndexKey + purpose + ":" + strconv.FormatUint(accountID, 10)
}

func parseTokenPayload(payload string) (uint64, error) {
	idx := strings.IndexByte(payload, '|')
	if idx <= 0 {
		return 0, UnExpectedError
	}
	return strconv.ParseUint(payload[:idx], 10, 64)
}
