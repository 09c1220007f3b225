// Package labels 检测模型的类别标签表
// 支持 ultralytics 数据集 yaml 的两种 names 写法,缺省内置 COCO 80 类
package labels

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Map 类别 id 与名称的双向映射
type Map struct {
	byID   map[int]string
	byName map[string]int
}

type datasetFile struct {
	Names yaml.Node `yaml:"names"`
}

// Load 从数据集 yaml 读取类别表
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse labels %s: %w", path, err)
	}
	return m, nil
}

// Parse 解析 names 字段
// 映射写法 names: {0: person} 与列表写法 names: [person] 均可
func Parse(data []byte) (*Map, error) {
	var f datasetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	switch f.Names.Kind {
	case yaml.MappingNode:
		var byID map[int]string
		if err := f.Names.Decode(&byID); err != nil {
			return nil, fmt.Errorf("decode names map: %w", err)
		}
		return fromID(byID), nil
	case yaml.SequenceNode:
		var names []string
		if err := f.Names.Decode(&names); err != nil {
			return nil, fmt.Errorf("decode names list: %w", err)
		}
		byID := make(map[int]string, len(names))
		for i, name := range names {
			byID[i] = name
		}
		return fromID(byID), nil
	}
	return nil, fmt.Errorf("no names field found")
}

func fromID(byID map[int]string) *Map {
	m := Map{
		byID:   byID,
		byName: make(map[string]int, len(byID)),
	}
	for id, name := range byID {
		m.byName[name] = id
	}
	return &m
}

// Name 按 id 查名称
func (m *Map) Name(id int) (string, bool) {
	name, ok := m.byID[id]
	return name, ok
}

// ID 按名称查 id
func (m *Map) ID(name string) (int, bool) {
	id, ok := m.byName[name]
	return id, ok
}

func (m *Map) Len() int {
	return len(m.byID)
}

// Names 按 id 升序返回全部名称
func (m *Map) Names() []string {
	ids := make([]int, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.byID[id])
	}
	return out
}

// Validate 校验目标类别是否都在标签表内
// 大小写仅不一致时提示正确写法
func (m *Map) Validate(classes []string) error {
	for _, c := range classes {
		if _, ok := m.byName[c]; ok {
			continue
		}
		for name := range m.byName {
			if strings.EqualFold(name, c) {
				return fmt.Errorf("unknown class [%s], did you mean [%s]", c, name)
			}
		}
		return fmt.Errorf("unknown class [%s]", c)
	}
	return nil
}

// COCO ultralytics 预训练模型的 80 类
func COCO() *Map {
	names := []string{
		"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck",
		"boat", "traffic light", "fire hydrant", "stop sign", "parking meter", "bench",
		"bird", "cat", "dog", "horse", "sheep", "cow", "elephant", "bear", "zebra",
		"giraffe", "backpack", "umbrella", "handbag", "tie", "suitcase", "frisbee",
		"skis", "snowboard", "sports ball", "kite", "baseball bat", "baseball glove",
		"skateboard", "surfboard", "tennis racket", "bottle", "wine glass", "cup",
		"fork", "knife", "spoon", "bowl", "banana", "apple", "sandwich", "orange",
		"broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair", "couch",
		"potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
		"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink",
		"refrigerator", "book", "clock", "vase", "scissors", "teddy bear",
		"hair drier", "toothbrush",
	}
	byID := make(map[int]string, len(names))
	for i, name := range names {
		byID[i] = name
	}
	return fromID(byID)
}
