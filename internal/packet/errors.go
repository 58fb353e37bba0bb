package packet

import "errors"

var (
	// ErrInvalidSchema 模板文档或要素片段缺少必需字段，未生成任何对象
	ErrInvalidSchema = errors.New("packet: invalid schema")
	// ErrUnresolvedDataSource 运行时数据源无法给出取值
	ErrUnresolvedDataSource = errors.New("packet: unresolved data source")
)
