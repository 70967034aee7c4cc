package dto

// TableDto 无类型表格数据传输对象
// 用于向前端或命令行输出原始表格内容
type TableDto struct {
	// Header 列名，无表头时为 Column1..N
	Header []string `json:"header"`
	// DataList 数据行，每个元素是列名到值的映射
	DataList []map[string]string `json:"dataList"`
	// Type 来源格式，如 "csv", "excel"
	Type string `json:"type"`
	// Suffix 文件扩展名，如 "csv", "xlsx"
	Suffix string `json:"suffix"`
	// Name 表格名称，通常是文件名去掉扩展名
	Name string `json:"name"`
}

// Rows 按 Header 顺序展开为二维切片，不含表头
func (t *TableDto) Rows() [][]string {
	rows := make([][]string, len(t.DataList))
	for i, item := range t.DataList {
		row := make([]string, len(t.Header))
		for j, name := range t.Header {
			row[j] = item[name]
		}
		rows[i] = row
	}
	return rows
}
