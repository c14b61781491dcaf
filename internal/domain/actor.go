package domain

import (
	"strconv"
	"strings"
	"time"
)

// Role — нормализованная роль сотрудника ателье.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleEmploye    Role = "employe"
)

// roleAliases сводит варианты написания к каноническим ролям.
var roleAliases = map[string]Role{
	"super_admin":   RoleSuperAdmin,
	"super-admin":   RoleSuperAdmin,
	"superadmin":    RoleSuperAdmin,
	"admin":         RoleAdmin,
	"administrator": RoleAdmin,
	"employe":       RoleEmploye,
	"employee":      RoleEmploye,
	"user":          RoleEmploye,
}

// NormalizeRole приводит сырую строку роли к одному из канонических значений.
// Сравнение нечувствительно к регистру и пробелам; нераспознанные и пустые
// значения трактуются как employe.
func NormalizeRole(raw string) Role {
	value := strings.ToLower(strings.TrimSpace(raw))
	if role, ok := roleAliases[value]; ok {
		return role
	}
	return RoleEmploye
}

// Actor — аутентифицируемый сотрудник (портной, админ или супер-админ).
// Записи создаются при заведении учёток и для этого ядра read-only.
type Actor struct {
	ID           int64
	Code         string
	FirstName    string
	LastName     string
	Role         Role
	SalonID      string
	PasswordHash string
	CreatedAt    time.Time
}

// IsAdmin сообщает, является ли сотрудник администратором салона.
func (a *Actor) IsAdmin() bool {
	return NormalizeRole(string(a.Role)) == RoleAdmin
}

// IsEmploye сообщает, является ли сотрудник рядовым портным.
func (a *Actor) IsEmploye() bool {
	return NormalizeRole(string(a.Role)) == RoleEmploye
}

// ResolveSalonID возвращает идентификатор салона, в рамках которого работает
// сотрудник. Конвенция self-tenant: админ без явного salon_id использует
// собственный id как идентификатор салона; для остальных ролей пустой
// salon_id так и остаётся пустым.
func (a *Actor) ResolveSalonID() string {
	if a.SalonID != "" {
		return a.SalonID
	}
	if NormalizeRole(string(a.Role)) == RoleAdmin {
		return strconv.FormatInt(a.ID, 10)
	}
	return ""
}
