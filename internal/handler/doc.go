// Package handler 按业务域划分的 HTTP 处理器，具体实现在各子包中。
//
// 该文件让 swag 能够以 ./internal/handler 为扫描目录。
package handler
