package translator_test

import (
	"context"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vk/stladder/internal/ctxlog"
	"github.com/vk/stladder/internal/device"
	"github.com/vk/stladder/internal/ladder"
	"github.com/vk/stladder/internal/translator"
)

var fixedNow = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func translate(src string) *translator.Result {
	ctx := ctxlog.Discard(context.Background())
	res, err := translator.Translate(ctx, src, translator.Options{Now: fixedNow})
	Expect(err).NotTo(HaveOccurred())
	return res
}

const plant = `VAR
  StartButton : BOOL;
  StopButton : BOOL;
  Level : INT;
  Delay : TON;
END_VAR
IF StartButton AND NOT StopButton THEN
  Motor := TRUE;
  RunLamp := TRUE;
END_IF;
IF Motor OR Delay.Q THEN
  Valve := TRUE;
ELSE
  Valve := FALSE;
END_IF;
CASE Level OF
  0: Alarm := TRUE;
  1, 2: Alarm := FALSE;
END_CASE;
`

var _ = Describe("Translation", func() {
	Describe("device addressing", func() {
		It("gives every reference of a variable the same address", func() {
			res := translate(plant)

			seen := map[string]device.Address{}
			for _, r := range res.Program.Rungs {
				for _, e := range r.Elements {
					name := device.BaseName(e.SourceVariable)
					if prev, ok := seen[name]; ok {
						Expect(e.Address).To(Equal(prev), "variable %s", name)
					}
					seen[name] = e.Address
				}
			}
			Expect(seen).To(HaveKeyWithValue("Motor", device.Address{Class: device.Output, Index: 0}))
			Expect(seen).To(HaveKeyWithValue("Delay", device.Address{Class: device.Timer, Index: 0}))
		})

		It("never hands out one address twice within a class", func() {
			res := translate(plant)

			for _, c := range device.Classes {
				entries := res.Devices[c]
				addrs := map[string]bool{}
				for i, e := range entries {
					Expect(e.Address.Class).To(Equal(c))
					Expect(e.Address.Index).To(Equal(i), "indices are dense from zero")
					Expect(addrs).NotTo(HaveKey(e.Address.String()))
					addrs[e.Address.String()] = true
				}
			}
		})
	})

	Describe("error isolation", func() {
		DescribeTable("a malformed line costs exactly that line plus one error",
			func(bad string) {
				lines := strings.Split(plant, "\n")
				withBad := append(append([]string{}, lines[:6]...), append([]string{bad}, lines[6:]...)...)
				withBlank := append(append([]string{}, lines[:6]...), append([]string{""}, lines[6:]...)...)

				broken := translate(strings.Join(withBad, "\n"))
				clean := translate(strings.Join(withBlank, "\n"))

				Expect(broken.Diagnostics.Errors).To(HaveLen(len(clean.Diagnostics.Errors) + 1))
				Expect(broken.Diagnostics.Errors[0].Line).To(Equal(7))
				Expect(cmp.Diff(clean.Program, broken.Program)).To(BeEmpty())
				Expect(cmp.Diff(clean.Devices, broken.Devices)).To(BeEmpty())
			},
			Entry("unsupported operator", "IF Start XOR Stop THEN Y9 := TRUE; END_IF"),
			Entry("assignment without value", "Y9 := ;"),
			Entry("missing THEN", "IF Start Y9 := TRUE; END_IF"),
			Entry("bad assignment target", "Y9 Y8 := 1;"),
		)
	})

	Describe("rung shape", func() {
		It("ends every rung in exactly one coil placed after the last contact column", func() {
			res := translate(plant)

			Expect(res.Program.Rungs).NotTo(BeEmpty())
			for _, r := range res.Program.Rungs {
				Expect(r.Validate()).To(Succeed())
				coil, _ := r.Coil()
				last := -1
				for _, c := range r.Contacts() {
					last = max(last, c.Position.Column)
				}
				Expect(coil.Position.Column).To(Equal(last + 1))
				Expect(coil.Position.Row).To(BeZero())
			}
		})
	})

	Describe("scenarios", func() {
		It("translates a simple IF", func() {
			res := translate("X1 : BOOL; IF X1 THEN Y1 := TRUE; END_IF")

			Expect(res.Program.Rungs).To(HaveLen(1))
			els := res.Program.Rungs[0].Elements
			Expect(els).To(HaveLen(2))
			Expect(els[0].Kind).To(Equal(ladder.Contact))
			Expect(els[0].Address.String()).To(Equal("X0"))
			Expect(els[0].NormallyOpen).To(BeTrue())
			Expect(els[1].Kind).To(Equal(ladder.Coil))
			Expect(els[1].Address.String()).To(Equal("Y0"))
			Expect(els[1].Description).To(Equal("Y1 := TRUE"))
			Expect(res.Devices.Addresses(device.Input)).To(Equal(map[string]string{"X0": "X1"}))
			Expect(res.Devices.Addresses(device.Output)).To(Equal(map[string]string{"Y0": "Y1"}))
		})

		It("skips a FUNCTION_BLOCK with a warning naming its lines", func() {
			res := translate("FUNCTION_BLOCK Foo\nVAR\n  In1 : BOOL;\nEND_VAR\nOut1 := In1;\nEND_FUNCTION_BLOCK\n")

			Expect(res.Program.Rungs).To(BeEmpty())
			Expect(res.Diagnostics.Errors).To(BeEmpty())
			Expect(res.Diagnostics.WarningStrings()).To(ConsistOf(
				And(ContainSubstring("FUNCTION_BLOCK"), ContainSubstring("lines 1-6")),
			))
		})

		It("lowers CASE into one rung per label", func() {
			res := translate("CASE Mode OF 0: Y1:=TRUE; 1: Y1:=FALSE; END_CASE")

			Expect(res.Program.Rungs).To(HaveLen(2))
			for i, want := range []string{"Mode = 0", "Mode = 1"} {
				r := res.Program.Rungs[i]
				Expect(r.Contacts()).To(HaveLen(1))
				Expect(r.Contacts()[0].Description).To(Equal(want))
				coil, _ := r.Coil()
				Expect(coil.SourceVariable).To(Equal("Y1"))
			}
		})

		It("draws NOT as a normally closed contact", func() {
			res := translate("IF NOT X1 THEN Y1 := TRUE; END_IF")

			contacts := res.Program.Rungs[0].Contacts()
			Expect(contacts).To(HaveLen(1))
			Expect(contacts[0].NormallyOpen).To(BeFalse())
			Expect(contacts[0].Address.String()).To(Equal("X0"))
		})
	})
})
