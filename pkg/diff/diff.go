// Package diff 提供基于 diff-match-patch 的反向补丁编解码
package diff

import (
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ApplyError indicates a patch blob could not be parsed or applied
// ApplyError 表示补丁无法解析或无法干净地应用
type ApplyError struct {
	Reason string
	Err    error
}

func (e *ApplyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("diff apply failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("diff apply failed: %s", e.Reason)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// MakeReversePatch computes a reverse patch: applied to newContent it restores oldContent
// MakeReversePatch 计算反向补丁：应用到 newContent 上可还原 oldContent
func MakeReversePatch(oldContent, newContent string) (patchText string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ApplyError{Reason: "panic during patch make", Err: fmt.Errorf("%v", r)}
		}
	}()

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(newContent, oldContent, false)
	patches := dmp.PatchMake(newContent, diffs)
	return dmp.PatchToText(patches), nil
}

// ApplyReversePatch applies a reverse patch to version N's content and yields version N-1's content
// ApplyReversePatch 将反向补丁应用到第 N 版内容上，得到第 N-1 版内容
func ApplyReversePatch(content, patchText string) (string, error) {
	patches, err := parse(patchText)
	if err != nil {
		return "", err
	}
	return apply(patches, content)
}

// ReapplyReversePatch applies a reverse patch in the opposite direction:
// given version N-1's content it yields version N's content
// ReapplyReversePatch 反向应用补丁：给定第 N-1 版内容，得到第 N 版内容
func ReapplyReversePatch(content, patchText string) (string, error) {
	patches, err := parse(patchText)
	if err != nil {
		return "", err
	}
	return apply(invert(patches), content)
}

func parse(patchText string) (patches []diffmatchpatch.Patch, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ApplyError{Reason: "panic during patch parse", Err: fmt.Errorf("%v", r)}
		}
	}()

	dmp := diffmatchpatch.New()
	patches, err = dmp.PatchFromText(patchText)
	if err != nil {
		return nil, &ApplyError{Reason: "malformed patch blob", Err: err}
	}
	return patches, nil
}

func apply(patches []diffmatchpatch.Patch, content string) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ApplyError{Reason: "panic during patch apply", Err: fmt.Errorf("%v", r)}
		}
	}()

	dmp := diffmatchpatch.New()
	result, applied := dmp.PatchApply(patches, content)
	for i, ok := range applied {
		if !ok {
			return "", &ApplyError{Reason: fmt.Sprintf("patch hunk %d did not apply", i)}
		}
	}
	return result, nil
}

// invert 交换每个补丁的插入/删除操作，使其可以沿相反方向应用
func invert(patches []diffmatchpatch.Patch) []diffmatchpatch.Patch {
	inverted := make([]diffmatchpatch.Patch, len(patches))
	for i, p := range patches {
		ip := diffmatchpatch.Patch{
			Start1:  p.Start2,
			Start2:  p.Start1,
			Length1: p.Length2,
			Length2: p.Length1,
		}
		ip.Diffs = make([]diffmatchpatch.Diff, len(p.Diffs))
		for j, d := range p.Diffs {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				ip.Diffs[j] = diffmatchpatch.Diff{Type: diffmatchpatch.DiffDelete, Text: d.Text}
			case diffmatchpatch.DiffDelete:
				ip.Diffs[j] = diffmatchpatch.Diff{Type: diffmatchpatch.DiffInsert, Text: d.Text}
			default:
				ip.Diffs[j] = d
			}
		}
		inverted[i] = ip
	}
	return inverted
}
