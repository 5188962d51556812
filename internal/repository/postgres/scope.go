package postgres

import (
	"fmt"
	"strings"

	"github.com/yourusername/teamflow/internal/domain"
)

// scopeCondition строит SQL-условие ограничения по области видимости
// для столбца с ID проекта. Возвращает пустую строку для неограниченной
// области и условие FALSE для пустой: пустая область означает ноль строк,
// а не отсутствие фильтра.
func scopeCondition(scope domain.AccessScope, column string, args *[]interface{}, argIndex *int) string {
	if scope.All {
		return ""
	}
	if len(scope.ProjectIDs) == 0 {
		return "FALSE"
	}

	placeholders := make([]string, len(scope.ProjectIDs))
	for i, id := range scope.ProjectIDs {
		placeholders[i] = fmt.Sprintf("$%d", *argIndex)
		*args = append(*args, id)
		*argIndex++
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", "))
}
