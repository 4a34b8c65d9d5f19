//go:build mobile

// embed.go - 移动端数据嵌入声明
//
// 此文件仅在使用 -tags mobile 构建时编译,
// 构建前需先把根目录的 data/ 复制到 mobile/data/。
package mobile

import "embed"

//go:embed data/tuning.yaml data/levels data/layouts
var dataFS embed.FS
