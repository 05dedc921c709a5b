package shared

// NormalizePagination 归一化分页参数，pageSize 为 0 表示不分页。
func NormalizePagination(page, pageSize int) (int, int) {
	if pageSize <= 0 {
		return 0, 0
	}
	if page < 1 {
		page = 1
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
