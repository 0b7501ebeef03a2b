package models

// Admin представляет администратора панели управления
type Admin struct {
	ID           int64  `json:"id"`            // autoincrement id
	Login        string `json:"login"`         // уникальный логин
	PasswordHash string `json:"password_hash"` // bcrypt хеш пароля
}

// Bundle представляет клиентское приложение в реестре
type Bundle struct {
	ID             int64  `json:"id"`               // autoincrement id
	BundleID       string `json:"bundle_id"`        // уникальный идентификатор, например com.example.app
	AllowExecution bool   `json:"allow_execution"`  // разрешен ли запуск
	LastAccessTime int64  `json:"last_access_time"` // unix время последней проверки через gate
}
