package packet

import (
	"errors"
	"fmt"
)

// DataSource 运行时数据源：按键取数值
type DataSource interface {
	Resolve(key string) (float64, error)
}

// MapSource 内存数据源
type MapSource map[string]float64

func (s MapSource) Resolve(key string) (float64, error) {
	v, ok := s[key]
	if !ok {
		return 0, fmt.Errorf("%w: key %q", ErrUnresolvedDataSource, key)
	}
	return v, nil
}

// ChainSource 依次查询多个数据源，返回第一个命中的值
// 只有 ErrUnresolvedDataSource 会继续向后查询，其他错误直接返回
type ChainSource []DataSource

func (c ChainSource) Resolve(key string) (float64, error) {
	for _, s := range c {
		if s == nil {
			continue
		}
		v, err := s.Resolve(key)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrUnresolvedDataSource) {
			return 0, err
		}
	}
	return 0, fmt.Errorf("%w: key %q", ErrUnresolvedDataSource, key)
}
