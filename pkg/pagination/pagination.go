// Package pagination 提供对消息序列的倒序分页计算
// 第 1 页是序列末尾最新的一段，页内仍按时间正序排列
package pagination

// 默认分页参数
// 请求中的 page/limit 无法解析时静默退回这两个值
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// Meta 分页元信息，随每页数据一起返回
type Meta struct {
	Page       int  `json:"page"`        // 当前页码，从 1 开始
	TotalPages int  `json:"total_pages"` // 总页数，空序列为 0
	HasMore    bool `json:"has_more"`    // 是否还有更早的页
}

// Window 计算第 page 页对应的半开区间 [start, end)
// 序列按时间正序存储（下标 0 最旧），分页从末尾向前切
// 参数:
//   - n: 序列长度
//   - page: 页码，>= 1
//   - limit: 每页数量，>= 1
//
// 返回:
//   - start, end: 切片下标，越界时收缩为空区间
func Window(n, page, limit int) (start, end int) {
	end = n - (page-1)*limit
	start = n - page*limit

	// 最早的一页可能不满 limit 条
	if start < 0 {
		start = 0
	}
	// 页码超出范围时返回空区间
	if end < 0 {
		end = 0
	}
	if start > end {
		start = end
	}
	return start, end
}

// TotalPages 计算总页数 ceil(n / limit)
// 参数:
//   - n: 序列长度
//   - limit: 每页数量，>= 1
//
// 返回:
//   - int: 总页数，n 为 0 时返回 0
func TotalPages(n, limit int) int {
	if n <= 0 {
		return 0
	}
	return (n + limit - 1) / limit
}

// MetaFor 计算一次分页请求的元信息
func MetaFor(n, page, limit int) Meta {
	total := TotalPages(n, limit)
	return Meta{
		Page:       page,
		TotalPages: total,
		HasMore:    page < total,
	}
}

// Normalize 校正请求中的分页参数
// 非正数退回默认值，绝不报错
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return page, limit
}
