// Package csv233 提供 CSV 文本与 Go 结构体之间的读写功能，所有行为由 FileDescription 统一配置。
//
// # 功能特性
//
//   - FileDescription 配置对象（区域文化、表头、编码、异常上限等）
//   - 区域敏感的数字/日期解析与格式化
//   - 进程级文本编码注册表，支持 BOM 自动识别
//   - 基于结构体标签的列发现
//   - 行级错误聚合，达到 MaximumExceptionCount 立即返回
//
// # 快速开始
//
//	desc := csv233.NewFileDescription()
//	if err := desc.SetCultureName("nl-NL"); err != nil {
//	    return err
//	}
//
//	reader, err := csv233.NewReader[Product](desc)
//	if err != nil {
//	    return err
//	}
//	products, err := reader.ReadFile("products.csv")
//
// # 结构体标签
//
//   - `csv233:"Name"` - 列名（默认使用字段名）
//   - `csv233:",index=2"` - 列序号，决定写出顺序和按序号读取时的映射
//   - `csv233:",format=2006-01-02"` - 输出格式（时间为 Go layout，数字为 printf 动词）
//   - `csv233:",required"` - 值为空时产生行级错误
//   - `csv233:"-"` - 忽略该字段
//
// # 错误聚合
//
// 读取时每个出错的行产生一个 *RowParseError，收集到 *AggregateParseError 中。
// 行错误数量达到 MaximumExceptionCount 时立即返回聚合错误并停止读取；
// 否则在输入结束时返回。MaximumExceptionCount 为 -1 表示不设上限。
//
// # 日志集成
//
// csv233 使用 logr 接口：
//
//	csv233.SetLogger(yourLogger)
package csv233
