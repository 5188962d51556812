package domain

// AccessScope описывает видимость данных для пользователя.
// Для администратора All=true, иначе перечисляются доступные проекты.
type AccessScope struct {
	All        bool
	ProjectIDs []string
}

// ScopeAll возвращает неограниченную область видимости
func ScopeAll() AccessScope {
	return AccessScope{All: true}
}

// ScopeProjects возвращает область видимости из перечисленных проектов
func ScopeProjects(ids []string) AccessScope {
	return AccessScope{ProjectIDs: ids}
}

// IsEmpty проверяет, пуста ли область видимости.
// Пустая область означает ноль строк в любом запросе, а не ошибку.
func (s AccessScope) IsEmpty() bool {
	return !s.All && len(s.ProjectIDs) == 0
}

// Contains проверяет, входит ли проект в область видимости
func (s AccessScope) Contains(projectID string) bool {
	if s.All {
		return true
	}
	for _, id := range s.ProjectIDs {
		if id == projectID {
			return true
		}
	}
	return false
}
