//go:build darwin

package monitor

/*
#cgo LDFLAGS: -framework ApplicationServices

#include <stdint.h>
#include <ApplicationServices/ApplicationServices.h>

extern void fnrowTapEmit(uintptr_t token, int down, long long code);

static CFMachPortRef tapPort = NULL;
static CFRunLoopSourceRef tapSource = NULL;
static CFRunLoopRef tapLoop = NULL;

static CGEventRef tapCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon) {
	// The OS disables a tap it considers too slow; turn it back on and
	// keep listening.
	if (type == kCGEventTapDisabledByTimeout || type == kCGEventTapDisabledByUserInput) {
		if (tapPort != NULL) {
			CGEventTapEnable(tapPort, true);
		}
		return event;
	}
	if (type == kCGEventKeyDown || type == kCGEventKeyUp) {
		long long code = CGEventGetIntegerValueField(event, kCGKeyboardEventKeycode);
		fnrowTapEmit((uintptr_t)refcon, type == kCGEventKeyDown ? 1 : 0, code);
	}
	// Listen-only: the event continues through the pipeline untouched.
	return event;
}

static int tapInstall(uintptr_t token) {
	CGEventMask mask = CGEventMaskBit(kCGEventKeyDown) | CGEventMaskBit(kCGEventKeyUp);
	tapPort = CGEventTapCreate(kCGSessionEventTap, kCGHeadInsertEventTap,
		kCGEventTapOptionListenOnly, mask, tapCallback, (void *)token);
	if (tapPort == NULL) {
		return -1;
	}
	tapSource = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tapPort, 0);
	tapLoop = CFRunLoopGetCurrent();
	CFRunLoopAddSource(tapLoop, tapSource, kCFRunLoopCommonModes);
	CGEventTapEnable(tapPort, true);
	return 0;
}

static void tapDisable(void) {
	if (tapPort != NULL) {
		CGEventTapEnable(tapPort, false);
	}
	if (tapLoop != NULL) {
		CFRunLoopStop(tapLoop);
	}
}

static void tapTeardown(void) {
	if (tapSource != NULL) {
		CFRunLoopRemoveSource(tapLoop, tapSource, kCFRunLoopCommonModes);
		CFRelease(tapSource);
		tapSource = NULL;
	}
	if (tapPort != NULL) {
		CFMachPortInvalidate(tapPort);
		CFRelease(tapPort);
		tapPort = NULL;
	}
	tapLoop = NULL;
}
*/
import "C"

import "runtime"

// darwinTap runs a CGEventTap on a dedicated run loop thread. One tap
// per process.
type darwinTap struct {
	loopDone chan struct{}
}

func newBackend() tapBackend {
	return &darwinTap{}
}

func (t *darwinTap) install(token uintptr) error {
	installed := make(chan error, 1)
	t.loopDone = make(chan struct{})
	go t.run(token, installed)
	return <-installed
}

// run pins the tap and its run loop to one OS thread for the whole
// monitoring session.
func (t *darwinTap) run(token uintptr, installed chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(t.loopDone)

	if C.tapInstall(C.uintptr_t(token)) != 0 {
		installed <- ErrPermission
		return
	}
	installed <- nil

	C.CFRunLoopRun()
	C.tapTeardown()
}

// remove disables the tap first, then stops the run loop and waits for
// the loop thread to finish unregistering. No callback can be dispatched
// once remove returns.
func (t *darwinTap) remove() {
	C.tapDisable()
	<-t.loopDone
}
