package ui

import "strings"

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle         = "app_title"
	KeyLogin            = "login"
	KeyUsername         = "username"
	KeyPassword         = "password"
	KeySignIn           = "sign_in"
	KeySigningIn        = "signing_in"
	KeyLoginFailed      = "login_failed"
	KeyLogout           = "logout"
	KeySessionExpired   = "session_expired"
	KeySettings         = "settings"
	KeyFile             = "file"
	KeyLanguage         = "language"
	KeyBackendURL       = "backend_url"
	KeyExportDirectory  = "export_directory"
	KeySave             = "save"
	KeyCancel           = "cancel"
	KeyBrowse           = "browse"
	KeySettingsSaved    = "settings_saved"
	KeyRestartHint      = "restart_hint"
	KeyAdd              = "add"
	KeyEdit             = "edit"
	KeyDelete           = "delete"
	KeyRefresh          = "refresh"
	KeySearch           = "search"
	KeyClear            = "clear"
	KeyExport           = "export"
	KeyImport           = "import"
	KeyReceipt          = "receipt"
	KeySelectAll        = "select_all"
	KeyAll              = "all"
	KeyGo               = "go"
	KeyRecordsCount     = "records_count"
	KeyConfirmDelete    = "confirm_delete"
	KeySelectOne        = "select_one"
	KeySelectSome       = "select_some"
	KeyOrderLocked      = "order_locked"
	KeyNewRecord        = "new_record"
	KeyEditRecord       = "edit_record"
	KeyTransfers        = "transfers"
	KeyReveal           = "reveal"
	KeyOpen             = "open"
	KeyCopyPath         = "copy_path"
	KeyPathCopied       = "path_copied"
	KeyTransferDone     = "transfer_done"
	KeyTransferFailed   = "transfer_failed"
	KeyImportSummary    = "import_summary"
	KeyLogs             = "logs"
	KeyLogFile          = "log_file"
	KeyErrorOpeningFile = "error_opening_file"
	KeyLoading          = "loading"
	KeyNoRecords        = "no_records"
	KeyRequestsActive   = "requests_active"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	return l.TextOr(key, key)
}

// TextOr returns localized text for key, falling back to English and then to
// fallback.
func (l *Localization) TextOr(key, fallback string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}
	return fallback
}

// Resource returns the tab title of a resource.
func (l *Localization) Resource(name, fallback string) string {
	return l.TextOr("resource_"+name, fallback)
}

// Field returns the label of a record field or search key. Table aliases such
// as "i.categories" are looked up by their column name.
func (l *Localization) Field(key, fallback string) string {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}
	return l.TextOr("field_"+key, fallback)
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns available language codes and names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"zh": "中文",
	}
}

// initializeTexts initializes all localized texts
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle:         "StockDesk",
		KeyLogin:            "Login",
		KeyUsername:         "Username",
		KeyPassword:         "Password",
		KeySignIn:           "Sign in",
		KeySigningIn:        "Signing in...",
		KeyLoginFailed:      "Wrong username or password",
		KeyLogout:           "Log out",
		KeySessionExpired:   "Your session has expired, please sign in again",
		KeySettings:         "Settings",
		KeyFile:             "File",
		KeyLanguage:         "Language",
		KeyBackendURL:       "Backend URL",
		KeyExportDirectory:  "Export directory",
		KeySave:             "Save",
		KeyCancel:           "Cancel",
		KeyBrowse:           "Browse",
		KeySettingsSaved:    "Settings saved",
		KeyRestartHint:      "A new backend URL is used after restart.",
		KeyAdd:              "Add",
		KeyEdit:             "Edit",
		KeyDelete:           "Delete",
		KeyRefresh:          "Refresh",
		KeySearch:           "Search",
		KeyClear:            "Clear",
		KeyExport:           "Export",
		KeyImport:           "Import",
		KeyReceipt:          "Receipt",
		KeySelectAll:        "All",
		KeyAll:              "All",
		KeyGo:               "Go",
		KeyRecordsCount:     "%d records",
		KeyConfirmDelete:    "Delete %d selected record(s)?",
		KeySelectOne:        "Select exactly one record",
		KeySelectSome:       "Select records first",
		KeyOrderLocked:      "Approved and rejected orders cannot be changed",
		KeyNewRecord:        "New record",
		KeyEditRecord:       "Edit record",
		KeyTransfers:        "Transfers",
		KeyReveal:           "Reveal",
		KeyOpen:             "Open",
		KeyCopyPath:         "Copy path",
		KeyPathCopied:       "Path copied to clipboard",
		KeyTransferDone:     "Transfer finished",
		KeyTransferFailed:   "Transfer failed",
		KeyImportSummary:    "Imported %d, skipped %d, failed %d",
		KeyLogs:             "Operation logs",
		KeyLogFile:          "Log file",
		KeyErrorOpeningFile: "Error opening file",
		KeyLoading:          "Loading...",
		KeyNoRecords:        "No records",
		KeyRequestsActive:   "%d request(s) in progress",

		"resource_inventory": "Inventory",
		"resource_orders":    "Orders",
		"resource_history":   "History",
		"resource_providers": "Providers",
		"resource_projects":  "Projects",
		"resource_employees": "Employees",
		"resource_users":     "Users",

		"field_year":      "Year",
		"field_month":     "Month",
		"field_condition": "Keyword",
		"field_name":      "Name",
		"field_category":  "Category",
	}

	// Chinese texts
	l.texts["zh"] = map[string]string{
		KeyAppTitle:         "库存管理",
		KeyLogin:            "登录",
		KeyUsername:         "用户名",
		KeyPassword:         "密码",
		KeySignIn:           "登录",
		KeySigningIn:        "正在登录...",
		KeyLoginFailed:      "用户名或密码错误",
		KeyLogout:           "退出登录",
		KeySessionExpired:   "登录已过期，请重新登录",
		KeySettings:         "设置",
		KeyFile:             "文件",
		KeyLanguage:         "语言",
		KeyBackendURL:       "服务器地址",
		KeyExportDirectory:  "导出目录",
		KeySave:             "保存",
		KeyCancel:           "取消",
		KeyBrowse:           "浏览",
		KeySettingsSaved:    "设置已保存",
		KeyRestartHint:      "新的服务器地址在重启后生效。",
		KeyAdd:              "新增",
		KeyEdit:             "修改",
		KeyDelete:           "删除",
		KeyRefresh:          "刷新",
		KeySearch:           "查询",
		KeyClear:            "重置",
		KeyExport:           "导出",
		KeyImport:           "导入",
		KeyReceipt:          "打印单据",
		KeySelectAll:        "全选",
		KeyAll:              "全部",
		KeyGo:               "跳转",
		KeyRecordsCount:     "共 %d 条",
		KeyConfirmDelete:    "确定删除选中的 %d 条数据吗？",
		KeySelectOne:        "请选择一条数据",
		KeySelectSome:       "请先选择数据",
		KeyOrderLocked:      "已通过或已驳回的订单不能修改",
		KeyNewRecord:        "新增数据",
		KeyEditRecord:       "修改数据",
		KeyTransfers:        "传输",
		KeyReveal:           "定位",
		KeyOpen:             "打开",
		KeyCopyPath:         "复制路径",
		KeyPathCopied:       "路径已复制",
		KeyTransferDone:     "传输完成",
		KeyTransferFailed:   "传输失败",
		KeyImportSummary:    "成功导入 %d 条，忽略 %d 条，失败 %d 条",
		KeyLogs:             "操作日志",
		KeyLogFile:          "日志文件",
		KeyErrorOpeningFile: "打开文件出错",
		KeyLoading:          "加载中...",
		KeyNoRecords:        "暂无数据",
		KeyRequestsActive:   "%d 个请求进行中",

		"resource_inventory": "库存",
		"resource_orders":    "订单",
		"resource_history":   "历史库存",
		"resource_providers": "供应商",
		"resource_projects":  "项目",
		"resource_employees": "员工",
		"resource_users":     "用户",

		"field_cargo_id":             "货物编号",
		"field_cargo_name":           "名称",
		"field_model":                "型号",
		"field_categories":           "类别",
		"field_category":             "类别",
		"field_count":                "数量",
		"field_price":                "单价",
		"field_total_price":          "总价",
		"field_order_id":             "订单号",
		"field_order_type":           "类型",
		"field_status":               "状态",
		"field_provider":             "供应商",
		"field_project":              "项目",
		"field_employee_name":        "经办人",
		"field_published_at":         "提交时间",
		"field_processed_at":         "处理时间",
		"field_specification":        "规格",
		"field_employee_id":          "员工编号",
		"field_gender":               "性别",
		"field_position":             "职位",
		"field_provider_name":        "供应商",
		"field_project_name":         "项目",
		"field_user_id":              "用户编号",
		"field_username":             "用户名",
		"field_password":             "密码",
		"field_created_at":           "创建时间",
		"field_privilege":            "权限",
		"field_id":                   "编号",
		"field_year":                 "年份",
		"field_month":                "月份",
		"field_condition":            "关键字",
		"field_name":                 "名称",
		"field_starting_price":       "期初单价",
		"field_starting_count":       "期初数量",
		"field_starting_total_price": "期初总价",
		"field_closing_price":        "期末单价",
		"field_closing_count":        "期末数量",
		"field_closing_total_price":  "期末总价",
	}
}
