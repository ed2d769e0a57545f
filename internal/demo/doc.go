// Package demo 提供命令行使用的演示主题与模拟负载
//
// 包含若干生成风格的主题声明、按固定频率发布的模拟传感器，以及
// 轮询或由回调唤醒的消费者，用于 "uorb run" 与 "uorb top" 观察总线状态。
package demo
