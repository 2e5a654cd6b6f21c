package core

// UserID 是经过校验的用户标识。
//
// 设计原则：ID 校验只发生在入口处（ParseUserID），内部代码一律
// 使用 UserID 类型，不再接受裸字符串，避免各处重复的防御式转换。
type UserID string

func (id UserID) String() string { return string(id) }

// ErrInvalidUserID 表示用户 ID 格式非法。
// 调用方通常不向上抛出：非法 ID 按"无历史用户"处理，走冷启动。
var ErrInvalidUserID = NewDomainError(ModuleRecommend, ErrorCodeInvalidInput, "recommend: invalid user id")

// ParseUserID 校验并转换原始用户 ID。
// ID 为 ObjectId 风格的 24 位十六进制字符串；为空或格式不符返回 ErrInvalidUserID。
func ParseUserID(raw string) (UserID, error) {
	if len(raw) != 24 {
		return "", ErrInvalidUserID
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return "", ErrInvalidUserID
		}
	}
	return UserID(raw), nil
}
