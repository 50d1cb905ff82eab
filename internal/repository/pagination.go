package repository

import "gorm.io/gorm"

// maxPageSize 单页上限，与 handler 层归一化一致
const maxPageSize = 100

// applyPagination 按页码截取结果；pageSize 非正时返回全部，超过上限时截断
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
