package core

import "github.com/rushteam/movierec/pkg/utils"

// RecommendContext 承载一次推荐请求的用户与场景信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	// UserID 是已通过 ParseUserID 校验的用户 ID。
	// 非法 ID 不会进入 Pipeline：入口处直接降级为冷启动。
	UserID UserID

	// Scene 标记请求场景，例如 "dashboard" / "movie_detail"。
	Scene string

	// Limit 是调用方期望的结果条数。
	Limit int

	// Profile 是本次请求构建的用户画像；冷启动路径下为 nil。
	Profile *UserProfile

	// Labels 是用户级标签，可驱动整个 Pipeline 行为。
	Labels map[string]utils.Label

	// Params 请求级上下文参数（调试开关、实验参数等）。
	Params map[string]any
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
