package csv233

// RecordLifecycle 记录生命周期接口
// 实现此接口的记录类型在每行解析完成后被调用，可以做数据预处理
type RecordLifecycle interface {
	// AfterRead 单行解析完成后调用
	AfterRead()
}

// RecordValidator 记录校验接口
// Check 返回的错误作为该行的行级错误参与聚合
type RecordValidator interface {
	// Check 返回 nil 表示校验通过
	Check() error
}

// runRecordHooks 依次调用 AfterRead 和 Check，rec 为指向记录的指针
func runRecordHooks(rec interface{}) error {
	if lc, ok := rec.(RecordLifecycle); ok {
		lc.AfterRead()
	}
	if v, ok := rec.(RecordValidator); ok {
		return v.Check()
	}
	return nil
}
