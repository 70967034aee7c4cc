package csv233

// exceptionCollector 行级错误累加器，在读取循环中显式传递
type exceptionCollector struct {
	max  int
	errs []*RowParseError
}

func newExceptionCollector(max int) *exceptionCollector {
	return &exceptionCollector{max: max}
}

// add 记录一个行级错误，返回是否已达到上限需要立即停止
func (c *exceptionCollector) add(err *RowParseError) bool {
	c.errs = append(c.errs, err)
	return c.max != UnlimitedExceptions && len(c.errs) >= c.max
}

func (c *exceptionCollector) len() int {
	return len(c.errs)
}

// err 没有错误时返回 nil，否则返回聚合错误
func (c *exceptionCollector) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	errs := make([]*RowParseError, len(c.errs))
	copy(errs, c.errs)
	return &AggregateParseError{Errors: errs}
}
