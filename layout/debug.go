package layout

import (
	"encoding/json"
	"os"
)

// Snapshot 汇总一次布局的行与单元信息，便于调试或可视化。
type Snapshot struct {
	Lines  []Line `json:"lines"`
	Units  []Unit `json:"units,omitempty"`
	Bounds Rect   `json:"bounds"`
}

// WriteDebugJSON 将布局快照输出为 JSON 文件。
func WriteDebugJSON(snap *Snapshot, path string) error {
	if snap == nil {
		return nil
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
